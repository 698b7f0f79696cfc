package icon

// Icon names a symbol in the registry.
type Icon int

const (
	Success Icon = iota
	Fail
	Progress
	Warn
	Search
	Star
	Heart
	Sync
	Key
)

var icons = map[Icon]*iconDef{
	Success: {
		emoji:   "🎉",
		nerd:    "",
		plain:   "✓",
		kaomoji: "(ᵔ◡ᵔ)",
		squares: "🟩",
	},
	Fail: {
		emoji:   "👹",
		nerd:    "",
		plain:   "✗",
		kaomoji: "(╯°□°）╯",
		squares: "🟥",
	},
	Progress: {
		emoji:   "👾",
		nerd:    "",
		plain:   "…",
		kaomoji: "( •_•)>⌐■-■",
		squares: "🟦",
	},
	Warn: {
		emoji:   "⚠️",
		nerd:    "",
		plain:   "!",
		kaomoji: "(・_・;)",
		squares: "🟨",
	},
	Search: {
		emoji:   "🔎",
		nerd:    "",
		plain:   "?",
		kaomoji: "(￣ー￣)",
		squares: "🟪",
	},
	Star: {
		emoji:   "⭐",
		nerd:    "",
		plain:   "*",
		kaomoji: "☆",
		squares: "🟧",
	},
	Heart: {
		emoji:   "❤️",
		nerd:    "",
		plain:   "<3",
		kaomoji: "♡",
		squares: "🟥",
	},
	Sync: {
		emoji:   "🔄",
		nerd:    "",
		plain:   "~",
		kaomoji: "(～￣▽￣)～",
		squares: "🟦",
	},
	Key: {
		emoji:   "🔑",
		nerd:    "",
		plain:   "#",
		kaomoji: "(⌐■_■)",
		squares: "🟫",
	},
}

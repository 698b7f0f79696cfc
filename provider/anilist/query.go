package anilist

// searchQuery selects the fields a search result needs.
const searchQuery = `query ($s: String, $t: MediaType) {
  Page(perPage: 15) {
    media(search: $s, type: $t, sort: SEARCH_MATCH) {
      ...record
    }
  }
}
` + recordFragment

// trendingQuery pages through currently trending titles, skipping unreleased ones.
const trendingQuery = `query ($t: MediaType, $p: Int) {
  Page(page: $p, perPage: 25) {
    media(type: $t, sort: TRENDING_DESC, status_not: NOT_YET_RELEASED) {
      ...record
    }
  }
}
` + recordFragment

const recordFragment = `fragment record on Media {
  id
  title { romaji english native }
  coverImage { large medium }
  bannerImage
  startDate { year }
  description(asHtml: false)
  averageScore
  genres
  studios(isMain: true) { nodes { name } }
  staff(perPage: 2, sort: RELEVANCE) { nodes { name { full } } }
}`

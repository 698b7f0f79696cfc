// Package main is the entry point for trackall.
package main

import (
	"github.com/mcmeskajr-prog/trackall/cmd"
	"github.com/mcmeskajr-prog/trackall/config"
	"github.com/mcmeskajr-prog/trackall/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}

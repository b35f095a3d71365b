package main

import (
	"github.com/robotalks/rclink/pkg/cli/sh"

	_ "github.com/robotalks/rclink/pkg/cli/cmds/link"
)

func main() {
	sh.Main()
}

package main

import (
	"fmt"

	"github.com/Fatijj/SpaceAgriOptimizer-NEW/commands"
)

// main entry point to training, evaluation and comparison runs
func main() {
	rootCommand := commands.GetRootCommand()
	if err := rootCommand.Execute(); err != nil {
		fmt.Println(err)
	}
}

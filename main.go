package main

import "github.com/ElektraInitiative/kdbtask/cmd"

func main() {
	cmd.Execute()
}

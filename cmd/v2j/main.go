package main

import "github.com/OpenTraceLab/v2j/cmd/v2j/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/theirongolddev/realtyai/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/theirongolddev/calciq/cmd"

func main() {
	cmd.Execute()
}

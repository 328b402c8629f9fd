package main

import "github.com/the1andoni/repowatch/cmd"

func main() {
	cmd.Execute()
}

package main

import "github.com/wordtrove/authd/cmd/authd/cmd"

func main() {
	cmd.Execute()
}

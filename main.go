package main

import (
	"event-ticket/cmd"
	_ "go.uber.org/automaxprocs"
)

func main() {
	cmd.Start()
}

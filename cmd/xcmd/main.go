package main

import "github.com/LeJamon/goXCM/internal/cli"

func main() {
	cli.Execute()
}

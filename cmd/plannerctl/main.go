package main

import "github.com/dafibh/fortuna/fortuna-planner/internal/cli"

func main() {
	cli.Execute()
}

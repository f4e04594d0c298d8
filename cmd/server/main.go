package main

import "noel_back_end/internal/cmd"

func main() {
	cmd.Execute()
}

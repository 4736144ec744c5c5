package main

import "github.com/mnavickas/buddyalloc/cmd"

func main() {
	cmd.Execute()
}

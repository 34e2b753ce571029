package main

import "github.com/umarahad2005/bit-brainiac-web/cmd"

func main() {
	cmd.Execute()
}

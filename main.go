package main

import "github.com/Rogerio-auto/campaign-gateway/cmd"

func main() {
	cmd.Execute()
}

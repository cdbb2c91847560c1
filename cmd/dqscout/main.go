package main

import "github.com/dbsmedya/dqscout/cmd/dqscout/cmd"

func main() {
	cmd.Execute()
}

package main

import (
	"github.com/MasahideMori-SimpleAppli/delta-trace-db-go-server/cmd"
)

func main() {
	cmd.Execute()
}

package main

import (
	"github.com/custodia-labs/zoomsync/internal/adapters/driving/cli"
)

func main() {
	cli.Execute()
}

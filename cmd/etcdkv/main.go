package main

import (
	"os"

	"github.com/linkorb/etcdkv-go/internal/cmd"
)

func main() {
	os.Exit(cmd.Main(os.Args))
}

package main

import (
	"os"
	"runtime/debug"

	"github.com/mezonai/qledger/cmd"
	"github.com/mezonai/qledger/logx"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			_ = logx.Errorf("QLEDGER CRASHED: %v\n%s", r, debug.Stack())
			os.Exit(1)
		}
	}()

	cmd.Execute()
}

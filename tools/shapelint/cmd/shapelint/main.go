package main

import (
	"github.com/deepankarm/structstream/tools/shapelint"
	"golang.org/x/tools/go/analysis/singlechecker"
)

func main() {
	singlechecker.Main(shapelint.Analyzer)
}

package main

import (
	"flag"

	"go.uber.org/zap"

	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/bootstrap"
	"github.com/jaminalder/codex-ultimate-tic-tac-toe/internal/eval"
)

func main() {
	zl, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	logger := zl.Sugar()
	defer logger.Sync()

	cfg, err := bootstrap.Setup(".env")
	if err != nil {
		logger.Fatalw("Failed to setup configuration", "error", err)
	}
	subPath := flag.String("sub", cfg.SubTablePath, "output path for the sub-board table")
	largePath := flag.String("large", cfg.LargeTablePath, "output path for the large-board table")
	flag.Parse()

	tables := eval.DefaultTables()
	if err := tables.Validate(); err != nil {
		logger.Fatalw("Generated tables are invalid", "error", err)
	}
	if err := eval.Save(tables, *subPath, *largePath); err != nil {
		logger.Fatalw("Failed to write score tables", "error", err)
	}
	logger.Infow("Score tables written", "sub", *subPath, "large", *largePath, "layouts", eval.Layouts)
}

package main

import (
	"context"

	"maeto-catalog/cmd/maeto/commands"
	"maeto-catalog/lib/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext(context.Background())
	defer cancel()
	commands.ExecuteContext(ctx)
}

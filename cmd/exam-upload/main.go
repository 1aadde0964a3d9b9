package main

import (
	"context"
	"tenttiarkisto-uploader/cmd/exam-upload/commands"
	"tenttiarkisto-uploader/lib/osutil"
)

func main() {
	ctx, cancel := osutil.InterruptContext(context.Background())
	defer cancel()
	commands.ExecuteContext(ctx)
}

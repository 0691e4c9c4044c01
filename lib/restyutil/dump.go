package restyutil

import (
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

// Dump writes every response the client receives to `output`, messages are
// numbered in the order they arrive.
func Dump(client *resty.Client, output Output) {
	var idcounter uint64
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		id := fmt.Sprintf("%04d", atomic.AddUint64(&idcounter, 1))
		err := output.Write(id, FormatMessage(res))
		if err != nil {
			slog.Warn("failed to dump http message", "id", id, "url", res.Request.URL, "err", err)
		}
		return nil
	})
}

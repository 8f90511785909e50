package blob

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alnah/go-coa2pdf/internal/config"
)

// Open selects a store from the sink configuration. An empty driver means
// archives are not kept, and Open returns a nil Store.
//
// S3 credentials come from AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY, or
// the default AWS chain when those are unset.
func Open(ctx context.Context, cfg config.SinkConfig) (Store, error) {
	switch Driver(strings.ToLower(cfg.Driver)) {
	case "":
		return nil, nil
	case DriverMemory:
		return NewMemory(WithMaxObjects(cfg.MaxArchives), WithMaxBytes(cfg.MaxBytes)), nil
	case DriverFilesystem:
		return NewFilesystem(cfg.Path)
	case DriverS3:
		return NewS3(ctx, S3Options{
			Bucket:          cfg.Bucket,
			Region:          cfg.Region,
			Endpoint:        cfg.Endpoint,
			PathStyle:       cfg.PathStyle,
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknown, cfg.Driver)
	}
}

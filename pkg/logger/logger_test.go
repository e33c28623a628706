package logger_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/developia-II/tree-rater-backend/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseLevel(t *testing.T) {
	Convey("Given level strings", t, func() {
		Convey("Known levels are parsed case-insensitively", func() {
			for in, want := range map[string]slog.Level{
				"debug":   slog.LevelDebug,
				"INFO":    slog.LevelInfo,
				"":        slog.LevelInfo,
				"Warning": slog.LevelWarn,
				"warn":    slog.LevelWarn,
				"error":   slog.LevelError,
			} {
				got, err := logger.ParseLevel(in)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
			}
		})

		Convey("Unknown levels are rejected", func() {
			_, err := logger.ParseLevel("verbose")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestLogger(t *testing.T) {
	Convey("Given a text logger at warn level", t, func() {
		var buf bytes.Buffer
		log, err := logger.New(&buf, "warn", false)
		So(err, ShouldBeNil)
		ctx := context.Background()

		Convey("Info records are filtered out", func() {
			log.Info(ctx, "hidden")
			So(buf.String(), ShouldBeEmpty)
		})

		Convey("Error records carry fields and the component name", func() {
			log.Named("upload").Error(ctx, "insert failed", logger.String("id", "abc"), logger.Error(errors.New("boom")))
			out := buf.String()
			So(out, ShouldContainSubstring, "insert failed")
			So(out, ShouldContainSubstring, "component=upload")
			So(out, ShouldContainSubstring, "id=abc")
			So(out, ShouldContainSubstring, "error=boom")
		})
	})
}

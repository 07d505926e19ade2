package qsim

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestConfig(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		cfg := DefaultConfig()

		So(cfg.Validate(), ShouldBeNil)
		So(cfg.Workers, ShouldBeGreaterThanOrEqualTo, 1)
		So(cfg.Tolerance, ShouldEqual, DefaultTolerance)
		So(cfg.CheckNorm, ShouldBeTrue)
		So(cfg.MaxQubits, ShouldEqual, 26)

		Convey("A YAML file overrides only what it names", func() {
			path := filepath.Join(t.TempDir(), "qsim.yaml")
			err := os.WriteFile(path, []byte(
				"workers: 3\n"+
					"dense_threshold: 2\n"+
					"breaker_reset_timeout: 5s\n",
			), 0o600)
			So(err, ShouldBeNil)

			loaded, err := LoadConfig(path)
			So(err, ShouldBeNil)
			So(loaded.Workers, ShouldEqual, 3)
			So(loaded.DenseThreshold, ShouldEqual, 2)
			So(loaded.BreakerResetTimeout, ShouldEqual, 5*time.Second)
			So(loaded.MaxQubits, ShouldEqual, cfg.MaxQubits)
			So(loaded.Tolerance, ShouldEqual, cfg.Tolerance)
		})

		Convey("Invalid values are refused", func() {
			path := filepath.Join(t.TempDir(), "bad.yaml")
			So(os.WriteFile(path, []byte("tolerance: -1\n"), 0o600), ShouldBeNil)

			_, err := LoadConfig(path)
			So(err, ShouldNotBeNil)
		})

		Convey("A missing file is an error", func() {
			_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
			So(err, ShouldNotBeNil)
		})
	})
}

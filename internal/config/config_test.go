package config_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/vero/internal/config"
	"github.com/okian/vero/internal/domain/windows"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with defaults", t, func() {
		cfg := config.New(context.Background())

		convey.Convey("Then it should carry the estimation defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.MinSamples, convey.ShouldEqual, 3)
			convey.So(cfg.MinSpanMonths, convey.ShouldEqual, 3.0)
			convey.So(cfg.NormalizationMonths, convey.ShouldEqual, 6.0)
			convey.So(cfg.StaleAfterMonths, convey.ShouldEqual, 12)
			convey.So(cfg.MetricsFile, convey.ShouldBeEmpty)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the default windows should be used", func() {
			convey.So(cfg.Definitions(), convey.ShouldResemble, windows.Defaults())
			convey.So(cfg.EstimatorOptions(), convey.ShouldHaveLength, 3)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given a default config", t, func() {
		cfg := config.New(context.Background())

		cases := []struct {
			name   string
			mutate func()
		}{
			{"unknown log level", func() { cfg.LogLevel = "loud" }},
			{"unknown log format", func() { cfg.LogFormat = "xml" }},
			{"one sample", func() { cfg.MinSamples = 1 }},
			{"zero span", func() { cfg.MinSpanMonths = 0 }},
			{"negative normalization", func() { cfg.NormalizationMonths = -6 }},
			{"negative staleness", func() { cfg.StaleAfterMonths = -1 }},
			{"inverted window", func() {
				cfg.Windows = []config.Window{{Name: "Speed", OffsetStartMonths: 6, OffsetEndMonths: -6}}
			}},
		}

		for _, tc := range cases {
			convey.Convey("When it has "+tc.name, func() {
				tc.mutate()

				convey.Convey("Then validation should fail with ErrInvalidConfig", func() {
					convey.So(errors.Is(cfg.Validate(), config.ErrInvalidConfig), convey.ShouldBeTrue)
				})
			})
		}

		convey.Convey("When windows are overridden", func() {
			cfg.Windows = []config.Window{{Name: "Strength", OffsetStartMonths: -3, OffsetEndMonths: 30}}

			convey.Convey("Then they should replace the defaults", func() {
				convey.So(cfg.Validate(), convey.ShouldBeNil)
				convey.So(cfg.Definitions(), convey.ShouldResemble, []windows.Definition{
					{Name: windows.Strength, OffsetStartMonths: -3, OffsetEndMonths: 30},
				})
			})
		})
	})
}

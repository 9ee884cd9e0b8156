package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/vero/internal/adapters/repository"
	service "github.com/okian/vero/internal/app"
	"github.com/okian/vero/internal/domain/advice"
	"github.com/okian/vero/internal/domain/calendar"
	"github.com/okian/vero/internal/domain/growth"
	"github.com/okian/vero/internal/domain/model"
	"github.com/okian/vero/internal/domain/phv"
	"github.com/okian/vero/internal/domain/windows"
	"github.com/okian/vero/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

func d(s string) calendar.Date { return calendar.MustParse(s) }

func ana() model.Athlete {
	return model.Athlete{
		ID:          "ana",
		Name:        "Ana",
		DateOfBirth: d("2010-04-12"),
		Samples: []model.GrowthSample{
			{Date: d("2023-03-01"), HeightCM: 162},
			{Date: d("2023-09-01"), HeightCM: 166},
			{Date: d("2024-03-01"), HeightCM: 174},
			{Date: d("2024-09-01"), HeightCM: 179},
		},
	}
}

func newService() *service.Service {
	return service.New(service.WithLogger(logger.Named("service-test")))
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Definitions(), ShouldResemble, windows.Defaults())
			stats := svc.GetStats()
			So(stats["athletes"], ShouldEqual, 0)
			So(stats["windows"], ShouldEqual, 5)
			So(stats["staleAfterMonths"], ShouldEqual, 12)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		store := repository.NewInMemoryStore()
		svc := service.New(
			service.WithStore(store),
			service.WithEstimator(phv.NewHeuristicEstimator(phv.WithMinSamples(2))),
			service.WithDefinitions([]windows.Definition{{Name: windows.Strength, OffsetStartMonths: 0, OffsetEndMonths: 24}}),
			service.WithStaleAfterMonths(6),
		)

		Convey("Then the options should be applied", func() {
			So(svc.Definitions(), ShouldHaveLength, 1)
			So(svc.GetStats()["staleAfterMonths"], ShouldEqual, 6)
		})

		Convey("Then the injected store should be used", func() {
			_, err := svc.AddAthlete(context.Background(), ana())
			So(err, ShouldBeNil)
			So(store.Count(context.Background()), ShouldEqual, 1)
		})
	})

	Convey("Given invalid definitions", t, func() {
		svc := service.New(service.WithDefinitions([]windows.Definition{{Name: windows.Speed, OffsetStartMonths: 1, OffsetEndMonths: -1}}))

		Convey("Then the defaults should be kept", func() {
			So(svc.Definitions(), ShouldResemble, windows.Defaults())
		})
	})
}

func TestService_Athletes(t *testing.T) {
	ctx := context.Background()

	Convey("Given a service", t, func() {
		svc := newService()

		Convey("When adding an athlete without a date of birth", func() {
			a := ana()
			a.DateOfBirth = calendar.Date{}
			_, err := svc.AddAthlete(ctx, a)

			Convey("Then ErrInvalidAthlete should be returned", func() {
				So(errors.Is(err, service.ErrInvalidAthlete), ShouldBeTrue)
			})
		})

		Convey("When adding an athlete with a non-positive height", func() {
			a := ana()
			a.Samples[2].HeightCM = 0
			_, err := svc.AddAthlete(ctx, a)

			Convey("Then ErrInvalidSample should be returned", func() {
				So(errors.Is(err, service.ErrInvalidSample), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "samples[2]")
			})
		})

		Convey("When importing a roster", func() {
			n, err := svc.Import(ctx, []model.Athlete{ana(), {Name: "Ben", DateOfBirth: d("2011-01-20")}})

			Convey("Then every athlete should be stored", func() {
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 2)
				list, err := svc.Athletes(ctx)
				So(err, ShouldBeNil)
				So(list, ShouldHaveLength, 2)
				So(list[0].Name, ShouldEqual, "Ana")
				So(list[1].ID, ShouldNotBeEmpty)
			})

			Convey("And removing one should leave the other", func() {
				So(svc.RemoveAthlete(ctx, "ana"), ShouldBeNil)
				_, err := svc.Athlete(ctx, "ana")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
				So(svc.GetStats()["athletes"], ShouldEqual, 1)
			})
		})

		Convey("When importing a roster with a bad record", func() {
			n, err := svc.Import(ctx, []model.Athlete{ana(), {Name: "Ben"}})

			Convey("Then nothing should be stored", func() {
				So(errors.Is(err, service.ErrInvalidAthlete), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "import athlete 1 (Ben)")
				So(n, ShouldEqual, 0)
				So(svc.GetStats()["athletes"], ShouldEqual, 0)
			})
		})

		Convey("When importing a roster that repeats an id", func() {
			ben := ana()
			ben.Name = "Ben"
			n, err := svc.Import(ctx, []model.Athlete{ana(), ben})

			Convey("Then ErrDuplicateID should be returned and nothing stored", func() {
				So(errors.Is(err, repository.ErrDuplicateID), ShouldBeTrue)
				So(n, ShouldEqual, 0)
				So(svc.GetStats()["athletes"], ShouldEqual, 0)
			})
		})

		Convey("When importing a roster that clashes with a stored athlete", func() {
			_, err := svc.AddAthlete(ctx, ana())
			So(err, ShouldBeNil)

			clash := ana()
			clash.Name = "Ana twin"
			clash.Samples = nil
			n, err := svc.Import(ctx, []model.Athlete{{ID: "ben", Name: "Ben", DateOfBirth: d("2011-01-20")}, clash})

			Convey("Then the athletes added before the clash should be rolled back", func() {
				So(errors.Is(err, repository.ErrDuplicateID), ShouldBeTrue)
				So(n, ShouldEqual, 0)
				So(svc.GetStats()["athletes"], ShouldEqual, 1)
				_, err := svc.Athlete(ctx, "ben")
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})

			Convey("Then the stored athlete should be untouched", func() {
				got, err := svc.Athlete(ctx, "ana")
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "Ana")
				So(got.Samples, ShouldHaveLength, 4)
			})
		})

		Convey("When adding an athlete whose id is taken", func() {
			_, err := svc.AddAthlete(ctx, ana())
			So(err, ShouldBeNil)

			other := ana()
			other.Name = "Ben"
			other.Samples = nil
			_, err = svc.AddAthlete(ctx, other)

			Convey("Then ErrDuplicateID should be returned", func() {
				So(errors.Is(err, repository.ErrDuplicateID), ShouldBeTrue)
			})

			Convey("Then the original athlete and its samples should be kept", func() {
				got, err := svc.Athlete(ctx, "ana")
				So(err, ShouldBeNil)
				So(got.Name, ShouldEqual, "Ana")
				So(got.Samples, ShouldHaveLength, 4)
				So(svc.GetStats()["athletes"], ShouldEqual, 1)
			})
		})

		Convey("When adding an athlete with a blank name", func() {
			a := ana()
			a.Name = "  "
			_, err := svc.AddAthlete(ctx, a)

			Convey("Then ErrInvalidAthlete should be returned", func() {
				So(errors.Is(err, service.ErrInvalidAthlete), ShouldBeTrue)
			})
		})
	})
}

func TestService_PHV(t *testing.T) {
	ctx := context.Background()

	Convey("Given a stored athlete with a clear growth peak", t, func() {
		svc := newService()
		_, err := svc.AddAthlete(ctx, ana())
		So(err, ShouldBeNil)

		Convey("When estimating PHV", func() {
			est, ok, err := svc.EstimatePHV(ctx, "ana")

			Convey("Then the fastest segment's later date should be returned", func() {
				So(err, ShouldBeNil)
				So(ok, ShouldBeTrue)
				So(est.Date, ShouldResemble, d("2024-03-01"))
				So(est.Rate, ShouldEqual, 8.0)
			})
		})

		Convey("When a manual PHV is set", func() {
			_, err := svc.SetManualPHV(ctx, "ana", d("2023-06-15"))
			So(err, ShouldBeNil)

			Convey("Then it should override the estimate", func() {
				eff, err := svc.EffectivePHV(ctx, "ana")
				So(err, ShouldBeNil)
				So(eff.Source, ShouldEqual, phv.SourceManual)
				So(eff.Date, ShouldResemble, d("2023-06-15"))
			})

			Convey("And new samples should not move it", func() {
				_, err := svc.AddSample(ctx, "ana", model.GrowthSample{Date: d("2025-03-01"), HeightCM: 200})
				So(err, ShouldBeNil)
				eff, _ := svc.EffectivePHV(ctx, "ana")
				So(eff.Date, ShouldResemble, d("2023-06-15"))
			})

			Convey("And estimation should still ignore it", func() {
				est, ok, _ := svc.EstimatePHV(ctx, "ana")
				So(ok, ShouldBeTrue)
				So(est.Date, ShouldResemble, d("2024-03-01"))
			})

			Convey("And clearing it should restore the estimate", func() {
				a, err := svc.ClearManualPHV(ctx, "ana")
				So(err, ShouldBeNil)
				So(a.HasManualPHV(), ShouldBeFalse)
				eff, _ := svc.EffectivePHV(ctx, "ana")
				So(eff.Source, ShouldEqual, phv.SourceEstimated)
			})
		})

		Convey("When setting a zero manual date", func() {
			_, err := svc.SetManualPHV(ctx, "ana", calendar.Date{})

			Convey("Then it should be rejected", func() {
				So(errors.Is(err, calendar.ErrInvalidDate), ShouldBeTrue)
			})
		})

		Convey("When a sample arrives out of order", func() {
			_, err := svc.AddSample(ctx, "ana", model.GrowthSample{Date: d("2022-09-01"), HeightCM: 158})

			Convey("Then the estimate should be unchanged", func() {
				So(err, ShouldBeNil)
				est, ok, _ := svc.EstimatePHV(ctx, "ana")
				So(ok, ShouldBeTrue)
				So(est.Date, ShouldResemble, d("2024-03-01"))
			})
		})

		Convey("When adding an invalid sample", func() {
			_, err := svc.AddSample(ctx, "ana", model.GrowthSample{Date: d("2025-01-01"), HeightCM: -1})

			Convey("Then ErrInvalidSample should be returned", func() {
				So(errors.Is(err, service.ErrInvalidSample), ShouldBeTrue)
			})
		})

		Convey("When the athlete is unknown", func() {
			_, _, err := svc.EstimatePHV(ctx, "nobody")

			Convey("Then ErrNotFound should be returned", func() {
				So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestService_Assess(t *testing.T) {
	ctx := context.Background()

	Convey("Given a stored athlete", t, func() {
		svc := newService()
		_, err := svc.AddAthlete(ctx, ana())
		So(err, ShouldBeNil)

		Convey("When checking windows three months after PHV", func() {
			ev, err := svc.ActiveWindows(ctx, "ana", d("2024-06-10"))

			Convey("Then Stamina, Strength and Speed should be open", func() {
				So(err, ShouldBeNil)
				So(ev.Active, ShouldResemble, []windows.Name{windows.Stamina, windows.Strength, windows.Speed})
			})
		})

		Convey("When assessed seven months after PHV", func() {
			as, err := svc.Assess(ctx, "ana", d("2024-10-15"))

			Convey("Then the assessment should bundle every result", func() {
				So(err, ShouldBeNil)
				So(as.AthleteID, ShouldEqual, "ana")
				So(as.AgeYears, ShouldEqual, 14)
				So(as.PHV.Source, ShouldEqual, phv.SourceEstimated)
				So(as.Windows.MonthsFromPHV, ShouldEqual, 7)
				So(as.Windows.Active, ShouldResemble, []windows.Name{windows.Stamina, windows.Strength})
				So(as.HasSamples, ShouldBeTrue)
				So(as.MonthsSinceLastSample, ShouldEqual, 1)
				So(as.Freshness, ShouldEqual, growth.FreshnessCurrent)
				So(as.Reasons, ShouldResemble, []advice.Reason{
					advice.ReasonPostPHV, advice.ReasonWindowStamina, advice.ReasonWindowStrength,
				})
				So(as.Messages, ShouldHaveLength, 3)
			})
		})

		Convey("When assessed long after the last measurement", func() {
			as, err := svc.Assess(ctx, "ana", d("2026-01-01"))

			Convey("Then the data should be flagged stale", func() {
				So(err, ShouldBeNil)
				So(as.Freshness, ShouldEqual, growth.FreshnessStale)
				So(as.Reasons[0], ShouldEqual, advice.ReasonStaleData)
			})
		})
	})

	Convey("Given athletes with and without enough data", t, func() {
		svc := newService()
		_, err := svc.Import(ctx, []model.Athlete{
			ana(),
			{ID: "ben", Name: "Ben", DateOfBirth: d("2011-01-20"), Samples: []model.GrowthSample{{Date: d("2024-01-01"), HeightCM: 150}}},
			{ID: "cleo", Name: "Cleo", DateOfBirth: d("2009-05-05")},
		})
		So(err, ShouldBeNil)

		Convey("When assessing all", func() {
			all, err := svc.AssessAll(ctx, d("2024-10-15"))

			Convey("Then each athlete should be assessed in name order", func() {
				So(err, ShouldBeNil)
				So(all, ShouldHaveLength, 3)
				So(all[0].Name, ShouldEqual, "Ana")
				So(all[1].Name, ShouldEqual, "Ben")
				So(all[2].Name, ShouldEqual, "Cleo")
			})

			Convey("Then missing PHV should read as insufficient data", func() {
				So(all[1].Windows.Status, ShouldEqual, windows.StatusInsufficientData)
				So(all[1].Reasons, ShouldResemble, []advice.Reason{advice.ReasonInsufficientData})
				So(all[2].HasSamples, ShouldBeFalse)
				So(all[2].Freshness, ShouldEqual, growth.FreshnessNoData)
			})
		})
	})
}

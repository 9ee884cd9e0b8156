package growth_test

import (
	"testing"

	"github.com/okian/vero/internal/domain/calendar"
	"github.com/okian/vero/internal/domain/growth"
	"github.com/okian/vero/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func d(s string) calendar.Date { return calendar.MustParse(s) }

func TestAgeInYears(t *testing.T) {
	Convey("Given a date of birth", t, func() {
		dob := d("2010-04-12")

		Convey("Then 14 years and 1 month should floor to 14", func() {
			So(growth.AgeInYears(dob, d("2024-06-01")), ShouldEqual, 14)
		})

		Convey("Then the birthday month should already count the new year", func() {
			So(growth.AgeInYears(dob, d("2024-04-01")), ShouldEqual, 14)
			So(growth.AgeInYears(dob, d("2024-03-31")), ShouldEqual, 13)
		})

		Convey("Then the day of birth should be zero", func() {
			So(growth.AgeInYears(dob, dob), ShouldEqual, 0)
		})

		Convey("Then dates before birth should floor to negative years", func() {
			So(growth.AgeInYears(dob, d("2010-03-01")), ShouldEqual, -1)
		})
	})
}

func TestMonthsSinceLastSample(t *testing.T) {
	Convey("Given unsorted samples", t, func() {
		samples := []model.GrowthSample{
			{Date: d("2023-09-01"), HeightCM: 166},
			{Date: d("2024-03-01"), HeightCM: 174},
			{Date: d("2023-03-01"), HeightCM: 162},
		}

		Convey("Then months should be counted from the latest date", func() {
			m, ok := growth.MonthsSinceLastSample(samples, d("2025-04-20"))
			So(ok, ShouldBeTrue)
			So(m, ShouldEqual, 13)
		})
	})

	Convey("Given no samples", t, func() {
		_, ok := growth.MonthsSinceLastSample(nil, d("2025-01-01"))

		Convey("Then absence should be reported", func() {
			So(ok, ShouldBeFalse)
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given a latest sample on 2024-03-01", t, func() {
		samples := []model.GrowthSample{{Date: d("2024-03-01"), HeightCM: 174}}

		Convey("Then exactly twelve months later should still be current", func() {
			So(growth.Classify(samples, d("2025-03-31"), growth.DefaultStaleAfterMonths), ShouldEqual, growth.FreshnessCurrent)
		})

		Convey("Then thirteen months later should be stale", func() {
			So(growth.Classify(samples, d("2025-04-01"), growth.DefaultStaleAfterMonths), ShouldEqual, growth.FreshnessStale)
		})

		Convey("Then a tighter threshold should flag earlier", func() {
			So(growth.Classify(samples, d("2024-10-01"), 6), ShouldEqual, growth.FreshnessStale)
		})
	})

	Convey("Given no samples", t, func() {
		So(growth.Classify(nil, d("2025-01-01"), 12), ShouldEqual, growth.FreshnessNoData)
	})
}

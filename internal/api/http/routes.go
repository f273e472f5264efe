package httpapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/bike-rental-dashboard/internal/dashboard"
	"github.com/i474232898/bike-rental-dashboard/internal/export"
	"github.com/i474232898/bike-rental-dashboard/internal/rental"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *rental.Service) {
	app.Get("/", func(c *fiber.Ctx) error {
		view, err := viewFor(c, service)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := dashboard.Render(&buf, view); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render dashboard")
		}
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.Send(buf.Bytes())
	})

	v1 := app.Group("/api/v1")

	v1.Get("/dashboard", func(c *fiber.Ctx) error {
		view, err := viewFor(c, service)
		if err != nil {
			return err
		}
		return c.JSON(view)
	})

	v1.Get("/daily", func(c *fiber.Ctx) error {
		view, err := viewFor(c, service)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"range": view.Range, "daily": view.Daily})
	})

	v1.Get("/seasons", func(c *fiber.Ctx) error {
		view, err := viewFor(c, service)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"range": view.Range, "seasons": view.Seasons})
	})

	v1.Get("/temperature", func(c *fiber.Ctx) error {
		view, err := viewFor(c, service)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"range": view.Range, "temperatureBands": view.TemperatureBands})
	})

	v1.Get("/hourly", func(c *fiber.Ctx) error {
		var q hourlyQuery
		if err := q.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		view, err := dashboardFor(service, q.Range.toYearRange())
		if err != nil {
			return err
		}

		hourly := view.Hourly
		if q.Top > 0 {
			hourly = rental.TopHours(hourly, q.Top)
		}
		return c.JSON(fiber.Map{
			"range":              view.Range,
			"hourly":             hourly,
			"averageHourlyTotal": view.AverageHourlyTotal,
		})
	})

	v1.Get("/export.xlsx", func(c *fiber.Ctx) error {
		view, err := viewFor(c, service)
		if err != nil {
			return err
		}

		var buf bytes.Buffer
		if err := export.WriteWorkbook(&buf, view); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to build workbook")
		}
		c.Attachment(export.FileName(view, time.Now()))
		c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		return c.Send(buf.Bytes())
	})

	v1.Get("/datasets", func(c *fiber.Ctx) error {
		current, err := service.Current()
		if err != nil {
			return mapServiceError(err)
		}
		return c.JSON(fiber.Map{
			"current": current,
			"history": service.History(),
		})
	})

	v1.Post("/datasets/reload", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Minute)
		defer cancel()

		changed, err := service.Load(ctx)
		if err != nil {
			return fiber.NewError(fiber.StatusBadGateway, err.Error())
		}
		current, err := service.Current()
		if err != nil {
			return mapServiceError(err)
		}
		return c.JSON(fiber.Map{
			"changed": changed,
			"current": current,
		})
	})
}

// rangeQuery holds the inclusive year range query parameters.
type rangeQuery struct {
	Start int `validate:"min=2011,max=2012"`
	End   int `validate:"min=2011,max=2012"`
}

func (r rangeQuery) toYearRange() rental.YearRange {
	return rental.YearRange{Start: r.Start, End: r.End}
}

// parseRangeQuery reads start/end, defaulting to the full supported range.
// An inverted range is accepted and yields empty tables.
func parseRangeQuery(c *fiber.Ctx) (rangeQuery, error) {
	full := rental.FullRange()
	q := rangeQuery{Start: full.Start, End: full.End}

	var err error
	if q.Start, err = queryInt(c, "start", q.Start); err != nil {
		return q, err
	}
	if q.End, err = queryInt(c, "end", q.End); err != nil {
		return q, err
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// hourlyQuery holds query parameters for the hourly endpoint.
type hourlyQuery struct {
	Range rangeQuery
	Top   int `validate:"gte=0,lte=24"`
}

func (h *hourlyQuery) bind(c *fiber.Ctx) error {
	r, err := parseRangeQuery(c)
	if err != nil {
		return err
	}
	h.Range = r

	h.Top, err = queryInt(c, "top", 0)
	return err
}

func queryInt(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	return n, nil
}

func viewFor(c *fiber.Ctx, service *rental.Service) (rental.DashboardView, error) {
	q, err := parseRangeQuery(c)
	if err != nil {
		return rental.DashboardView{}, fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return dashboardFor(service, q.toYearRange())
}

func dashboardFor(service *rental.Service, yr rental.YearRange) (rental.DashboardView, error) {
	view, err := service.Dashboard(yr)
	if err != nil {
		return rental.DashboardView{}, mapServiceError(err)
	}
	return view, nil
}

func mapServiceError(err error) error {
	if errors.Is(err, rental.ErrNoDataset) {
		return fiber.NewError(fiber.StatusServiceUnavailable, "rental dataset not loaded")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to compute rental aggregates")
}

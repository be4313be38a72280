package handlers

import (
	"time"

	"github.com/anjiri1684/study_space/middleware"
	"github.com/anjiri1684/study_space/services"
	"github.com/gofiber/fiber/v2"
)

func queryDate(c *fiber.Ctx, key string, fallback time.Time) (time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return fallback, nil
	}
	return services.ParseDate(raw)
}

// period reads ?from=&to=, defaulting to the current month so far.
func period(c *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	from, err := queryDate(c, "from", time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := queryDate(c, "to", now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

func (h *Handler) OccupancyReport(c *fiber.Ctx) error {
	day, err := queryDate(c, "date", time.Now().UTC())
	if err != nil {
		return err
	}
	rows, err := h.Reports.Occupancy(c.UserContext(), middleware.CurrentActor(c), day)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"date": day.Format("2006-01-02"), "rows": rows})
}

func (h *Handler) RevenueReport(c *fiber.Ctx) error {
	from, to, err := period(c)
	if err != nil {
		return err
	}
	rows, err := h.Reports.Revenue(c.UserContext(), middleware.CurrentActor(c), from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"from": from.Format("2006-01-02"), "to": to.Format("2006-01-02"), "rows": rows})
}

func (h *Handler) PayoutReport(c *fiber.Ctx) error {
	from, to, err := period(c)
	if err != nil {
		return err
	}
	rows, err := h.Reports.Payouts(c.UserContext(), middleware.CurrentActor(c), from, to)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"from": from.Format("2006-01-02"), "to": to.Format("2006-01-02"), "rows": rows})
}

func (h *Handler) PayoutReportXLSX(c *fiber.Ctx) error {
	from, to, err := period(c)
	if err != nil {
		return err
	}
	data, err := h.Reports.PayoutsXLSX(c.UserContext(), middleware.CurrentActor(c), from, to)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="payouts-`+from.Format("20060102")+`-`+to.Format("20060102")+`.xlsx"`)
	return c.Send(data)
}

package calendar

import (
	"errors"
	"net/http"
	"time"

	"expoadmin/api/response"
	"expoadmin/pkg/datepicker"

	"github.com/gin-gonic/gin"
)

// Controller 日期选择器的月视图，供前端渲染日历
type Controller struct {
	now func() time.Time
}

func NewController() *Controller {
	return &Controller{now: time.Now}
}

func (ctrl *Controller) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/calendar", ctrl.Month)
}

type DayView struct {
	Date     string `json:"date"`
	Day      int    `json:"day"`
	Outside  bool   `json:"outside"`
	Today    bool   `json:"today"`
	Selected bool   `json:"selected"`
}

type MonthView struct {
	Month    string    `json:"month"`
	Value    string    `json:"value,omitempty"`
	Weekdays []string  `json:"weekdays"`
	Days     []DayView `json:"days"`
}

// Month 查询参数：month=yyyy-MM（缺省为 value 所在月或当前月）、value=yyyy-MM-dd、week_start=sunday|monday|...
func (ctrl *Controller) Month(c *gin.Context) {
	weekStart, ok := datepicker.ParseWeekday(c.DefaultQuery("week_start", "sunday"))
	if !ok {
		response.HandleError(c, nil, "week_start must be a weekday name", http.StatusBadRequest)
		return
	}

	picker, err := datepicker.New(c.Query("value"),
		datepicker.WithClock(ctrl.now),
		datepicker.WithWeekStart(weekStart),
	)
	if err != nil {
		response.HandleError(c, err, "value must be formatted as yyyy-MM-dd", http.StatusBadRequest)
		return
	}
	picker.Toggle()

	if m := c.Query("month"); m != "" {
		month, err := time.Parse("2006-01", m)
		if err == nil && (month.Year() < 1900 || month.Year() > 2200) {
			err = errMonthRange
		}
		if err != nil {
			response.HandleError(c, err, "month must be formatted as yyyy-MM", http.StatusBadRequest)
			return
		}
		picker.ShowMonth(month)
	}

	grid := picker.Grid()
	days := make([]DayView, len(grid))
	for i, d := range grid {
		days[i] = DayView{
			Date:     d.ISO(),
			Day:      d.Date.Day(),
			Outside:  d.Outside,
			Today:    d.Today,
			Selected: d.Selected,
		}
	}

	weekdays := picker.Weekdays()
	names := make([]string, len(weekdays))
	for i, w := range weekdays {
		names[i] = w.String()[:3]
	}

	response.HandleSuccess(c, MonthView{
		Month:    picker.ViewedMonth().Format("2006-01"),
		Value:    picker.Value(),
		Weekdays: names,
		Days:     days,
	}, "ok")
}

var errMonthRange = errors.New("month out of range")

package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"expoadmin/pkg/datepicker"

	"github.com/spf13/cobra"
)

func newCalendarCmd() *cobra.Command {
	var month, value, weekStart string
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Print a month grid, marking the selected date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			start, ok := datepicker.ParseWeekday(weekStart)
			if !ok {
				return fmt.Errorf("unknown weekday %q", weekStart)
			}
			picker, err := datepicker.New(value, datepicker.WithWeekStart(start))
			if err != nil {
				return err
			}
			picker.Toggle()
			if month != "" {
				m, err := time.Parse("2006-01", month)
				if err != nil {
					return fmt.Errorf("--month must be yyyy-MM")
				}
				picker.ShowMonth(m)
			}
			renderMonth(cmd.OutOrStdout(), picker)
			return nil
		},
	}
	cmd.Flags().StringVar(&month, "month", "", "Month to show, yyyy-MM (defaults to the selected or current month)")
	cmd.Flags().StringVar(&value, "value", "", "Selected date, yyyy-MM-dd")
	cmd.Flags().StringVar(&weekStart, "week-start", "sunday", "First day of the week")
	return cmd
}

// renderMonth 每格 4 列宽；相邻月份的日期留空，选中日期加方括号，今天加 *
func renderMonth(w io.Writer, p *datepicker.Picker) {
	const width = 28
	title := p.ViewedMonth().Format("January 2006")
	fmt.Fprintf(w, "%*s\n", (width+len(title))/2, title)

	var header strings.Builder
	for _, d := range p.Weekdays() {
		header.WriteString(fmt.Sprintf(" %-3s", d.String()[:2]))
	}
	fmt.Fprintln(w, strings.TrimRight(header.String(), " "))

	var line strings.Builder
	for i, day := range p.Grid() {
		switch {
		case day.Outside:
			line.WriteString("    ")
		case day.Selected:
			line.WriteString(fmt.Sprintf("[%2d]", day.Date.Day()))
		case day.Today:
			line.WriteString(fmt.Sprintf("%3d*", day.Date.Day()))
		default:
			line.WriteString(fmt.Sprintf("%3d ", day.Date.Day()))
		}
		if i%7 == 6 {
			fmt.Fprintln(w, strings.TrimRight(line.String(), " "))
			line.Reset()
		}
	}
}

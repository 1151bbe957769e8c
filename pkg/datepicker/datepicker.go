/*
Package datepicker 单日期选择控件的状态模型。

状态机: Closed --Toggle--> Open --(Select | PointerDown outside | Today)--> Closed

值以 yyyy-MM-dd 字符串保存；ViewedMonth 与值相互独立，仅在打开时重置。
*/
package datepicker

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// ISOLayout yyyy-MM-dd
const ISOLayout = "2006-01-02"

// Target 指针按下的位置
type Target int

const (
	TargetOutside Target = iota
	TargetTrigger
	TargetPanel
)

// Day 网格中的一个单元格
type Day struct {
	Date     time.Time
	Outside  bool // 不属于 ViewedMonth，弱化显示但可选
	Today    bool
	Selected bool
}

func (d Day) ISO() string { return FormatISODate(d.Date) }

type Option func(*Picker)

// WithClock 注入时钟，Today 和默认月份使用它
func WithClock(now func() time.Time) Option {
	return func(p *Picker) { p.now = now }
}

// WithWeekStart 设置周起始日，默认周日
func WithWeekStart(d time.Weekday) Option {
	return func(p *Picker) { p.weekStart = d }
}

// WithOnChange 值变化回调
func WithOnChange(fn func(value string)) Option {
	return func(p *Picker) { p.onChange = fn }
}

type Picker struct {
	mu        sync.Mutex
	value     string
	open      bool
	viewed    time.Time
	weekStart time.Weekday
	now       func() time.Time
	onChange  func(string)
}

// New 创建控件，value 为空或 yyyy-MM-dd
func New(value string, opts ...Option) (*Picker, error) {
	p := &Picker{now: time.Now, weekStart: time.Sunday}
	for _, opt := range opts {
		opt(p)
	}
	if value != "" {
		if _, err := ParseISODate(value); err != nil {
			return nil, err
		}
	}
	p.value = value
	p.viewed = p.initialMonth()
	return p, nil
}

func (p *Picker) Value() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// SetValue 外部写入值，不改变开闭状态和 ViewedMonth
func (p *Picker) SetValue(value string) error {
	if value != "" {
		if _, err := ParseISODate(value); err != nil {
			return err
		}
	}
	p.mu.Lock()
	p.value = value
	p.mu.Unlock()
	return nil
}

func (p *Picker) IsOpen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// ViewedMonth 当前浏览月份的 1 号
func (p *Picker) ViewedMonth() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.viewed
}

func (p *Picker) WeekStart() time.Weekday { return p.weekStart }

// Toggle 切换开闭；打开时 ViewedMonth 重置为值所在月份，无值则为当前月份
func (p *Picker) Toggle() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.open {
		p.open = false
		return
	}
	p.open = true
	p.viewed = p.initialMonth()
}

func (p *Picker) NextMonth() {
	p.mu.Lock()
	p.viewed = p.viewed.AddDate(0, 1, 0)
	p.mu.Unlock()
}

func (p *Picker) PrevMonth() {
	p.mu.Lock()
	p.viewed = p.viewed.AddDate(0, -1, 0)
	p.mu.Unlock()
}

// Select 选中某天（可以是相邻月份的日期），写入值并关闭
func (p *Picker) Select(day time.Time) string {
	return p.commit(FormatISODate(day))
}

// Today 选中真实的当前日期，与 ViewedMonth 无关
func (p *Picker) Today() string {
	return p.commit(FormatISODate(p.now()))
}

// PointerDown 仅当按下位置在按钮和面板之外时关闭，不改变值。返回是否关闭了面板。
func (p *Picker) PointerDown(target Target) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.open || target != TargetOutside {
		return false
	}
	p.open = false
	return true
}

func (p *Picker) commit(value string) string {
	p.mu.Lock()
	changed := p.value != value
	p.value = value
	p.open = false
	onChange := p.onChange
	p.mu.Unlock()

	if changed && onChange != nil {
		onChange(value)
	}
	return value
}

// Grid 覆盖 ViewedMonth 的完整周：从 1 号所在周的起始日到最后一天所在周的结束日
func (p *Picker) Grid() []Day {
	p.mu.Lock()
	viewed, value, weekStart := p.viewed, p.value, p.weekStart
	p.mu.Unlock()

	today := FormatISODate(p.now())
	return MonthGrid(viewed, weekStart, func(d Day) Day {
		iso := d.ISO()
		d.Today = iso == today
		d.Selected = iso == value
		return d
	})
}

// Weekdays 表头，从周起始日开始
func (p *Picker) Weekdays() []time.Weekday {
	return Weekdays(p.weekStart)
}

func (p *Picker) initialMonth() time.Time {
	if p.value != "" {
		if t, err := ParseISODate(p.value); err == nil {
			return firstOfMonth(t)
		}
	}
	return firstOfMonth(p.now())
}

// MonthGrid 生成 month 所在月份的完整周网格，decorate 可为 nil
func MonthGrid(month time.Time, weekStart time.Weekday, decorate func(Day) Day) []Day {
	first := firstOfMonth(month)
	last := first.AddDate(0, 1, -1)

	lead := (int(first.Weekday()) - int(weekStart) + 7) % 7
	trail := (int(weekStart) + 6 - int(last.Weekday()) + 7) % 7
	start := first.AddDate(0, 0, -lead)
	end := last.AddDate(0, 0, trail)

	days := make([]Day, 0, 42)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		day := Day{Date: d, Outside: d.Month() != first.Month()}
		if decorate != nil {
			day = decorate(day)
		}
		days = append(days, day)
	}
	return days
}

func Weekdays(weekStart time.Weekday) []time.Weekday {
	days := make([]time.Weekday, 7)
	for i := range days {
		days[i] = time.Weekday((int(weekStart) + i) % 7)
	}
	return days
}

// ParseISODate 解析 yyyy-MM-dd
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(ISOLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected yyyy-MM-dd", s)
	}
	return t, nil
}

// FormatISODate 按日历日期格式化，忽略时区换算
func FormatISODate(t time.Time) string {
	return t.Format(ISOLayout)
}

// ParseWeekday 接受完整英文名或三字母缩写，大小写不敏感
func ParseWeekday(name string) (time.Weekday, bool) {
	for d := time.Sunday; d <= time.Saturday; d++ {
		if strings.EqualFold(name, d.String()) || strings.EqualFold(name, d.String()[:3]) {
			return d, true
		}
	}
	return time.Sunday, false
}

// ShowMonth 翻页到 month 所在月份
func (p *Picker) ShowMonth(month time.Time) {
	p.mu.Lock()
	p.viewed = firstOfMonth(month)
	p.mu.Unlock()
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

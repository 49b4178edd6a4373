// Package textutil 提供查询文本的时间处理工具
package textutil

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var weekdays = map[time.Weekday]string{
	time.Monday:    "星期一",
	time.Tuesday:   "星期二",
	time.Wednesday: "星期三",
	time.Thursday:  "星期四",
	time.Friday:    "星期五",
	time.Saturday:  "星期六",
	time.Sunday:    "星期日",
}

var (
	todayOfPattern    = regexp.MustCompile(`今天的(股票|行情|财经|新闻|数据)`)
	todaySpacePattern = regexp.MustCompile(`今天 (股票|行情|财经|新闻|数据)`)
)

// InsertCurrentTime 识别时间类查询并直接作答；
// 非完整时间问题时，将"今天"类短语替换为具体日期后原样返回。
func InsertCurrentTime(text string) string {
	return insertCurrentTimeAt(text, time.Now())
}

func insertCurrentTimeAt(text string, now time.Time) string {
	date := now.Format("2006年01月02日")
	clock := now.Format("15:04:05")
	datetime := date + " " + clock
	weekday := weekdays[now.Weekday()]

	answers := map[string]string{
		"今天是什么时间": fmt.Sprintf("今天的时间是%s。", datetime),
		"今天是什么日期": fmt.Sprintf("今天的日期是%s。", date),
		"现在的时间是多少": fmt.Sprintf("现在的时间是%s。", clock),
		"当前时间":     fmt.Sprintf("当前时间是%s。", clock),
		"现在几点":     fmt.Sprintf("现在的时间是%s。", clock),
		"今天是几号":    fmt.Sprintf("今天是%s。", date),
		"今天是星期几":   fmt.Sprintf("今天是%s。", weekday),
		"今天周几":     fmt.Sprintf("今天是%s。", weekday),
		"今天是什么日子":  fmt.Sprintf("今天是%s。", date),
	}

	stripped := strings.TrimSpace(text)
	stripped = strings.TrimSuffix(stripped, "？")
	stripped = strings.TrimSuffix(stripped, "?")
	if answer, ok := answers[stripped]; ok {
		return answer
	}

	processed := todayOfPattern.ReplaceAllString(text, date+"的$1")
	processed = todaySpacePattern.ReplaceAllString(processed, date+" $1")
	return processed
}

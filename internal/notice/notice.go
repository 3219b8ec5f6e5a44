// Package notice builds the periodic notification texts. Every function
// is a pure query over the clock so both the scheduler jobs and the chat
// commands can share them.
package notice

import (
	"fmt"
	"strings"
	"time"
)

type birthday struct {
	Month time.Month
	Day   int
	Name  string
}

var characterBirthdays = []birthday{
	{time.January, 1, "스즈미 마리나"},
	{time.January, 15, "시로코"},
	{time.February, 1, "호시노"},
	{time.February, 14, "아루"},
	{time.March, 1, "아로나"},
	{time.March, 12, "유우카"},
	{time.April, 19, "미카"},
	{time.May, 2, "히나"},
	{time.June, 6, "코하루"},
	{time.July, 7, "아즈사"},
	{time.August, 16, "이즈나"},
	{time.September, 9, "미도리"},
	{time.September, 9, "모모이"},
	{time.October, 27, "와카모"},
	{time.November, 12, "노아"},
	{time.December, 25, "세리나"},
}

// shopResetHour is the in-game daily shop reset, KST.
const shopResetHour = 5

// Birthday returns the birthday announcement for now's date, or an
// empty string when no character has a birthday today.
func Birthday(now time.Time) string {
	var names []string
	for _, b := range characterBirthdays {
		if b.Month == now.Month() && b.Day == now.Day() {
			names = append(names, b.Name)
		}
	}
	if len(names) == 0 {
		return ""
	}
	return fmt.Sprintf("🎂 오늘은 %s 선생님의 생일입니다! 축하해주세요~ 🎉", strings.Join(names, ", "))
}

// Stroking returns the daily petting reminder.
func Stroking() string {
	return "🐱 냥이 쓰다듬기 시간이에요! 게임에 접속해서 냥이를 쓰다듬어주세요~ 😊"
}

// Coupon returns the coupon check reminder.
func Coupon() string {
	return "🎮 겔럭시 쿠폰 확인하세요! 새로운 쿠폰이 나왔을지도...? 💎"
}

// ShopReset reports how long until the next daily shop reset.
func ShopReset(now time.Time) string {
	next := time.Date(now.Year(), now.Month(), now.Day(), shopResetHour, 0, 0, 0, now.Location())
	if !now.Before(next) {
		next = next.AddDate(0, 0, 1)
	}
	remaining := next.Sub(now)
	hours := int(remaining / time.Hour)
	minutes := int(remaining % time.Hour / time.Minute)
	return fmt.Sprintf("🛒 상점 초기화까지 %d시간 %d분 남았습니다.", hours, minutes)
}

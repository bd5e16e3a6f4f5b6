// Package reasoning 生成推荐解释：一组按固定顺序、按条件出现的子句，用 "; " 连接。
//
// 子句与 scoring 共用分档函数，解释文本不会与对应的分项分数矛盾。
package reasoning

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rushteam/homerec/core"
	"github.com/rushteam/homerec/scoring"
)

// Separator 是子句分隔符。
const Separator = "; "

// 学区评分阈值。
const (
	ExcellentSchool = 7.0
	GoodSchool      = 5.0
)

// 价格不超过预算的该比例时称为 "well under"。
const wellUnderRatio = 0.9

var printer = message.NewPrinter(language.English)

// Explain 返回完整的解释文本。
func Explain(p core.Property, price float64, prefs core.Preferences, sub core.SubScores, currentYear int) string {
	return strings.Join(Clauses(p, price, prefs, sub, currentYear), Separator)
}

// Clauses 按顺序返回子句：价格、卧室/浴室、学区、通勤、房龄、配套设施、位置。
func Clauses(p core.Property, price float64, prefs core.Preferences, sub core.SubScores, currentYear int) []string {
	clauses := make([]string, 0, 7)
	clauses = append(clauses, priceClause(price, prefs.Budget, sub.PriceMatch))
	clauses = append(clauses, roomsClause(p, prefs.MinBedrooms))
	if c := schoolClause(p.SchoolRating); c != "" {
		clauses = append(clauses, c)
	}
	clauses = append(clauses, commuteClause(p.CommuteTime))
	clauses = append(clauses, ageClause(p.YearBuilt, currentYear))
	if amenities := p.Amenities(); len(amenities) > 0 {
		clauses = append(clauses, "Features: "+strings.Join(amenities, ", "))
	}
	if p.City != "" && p.State != "" {
		clauses = append(clauses, fmt.Sprintf("Location: %s, %s", p.City, p.State))
	}
	return clauses
}

func dollars(v float64) string {
	return printer.Sprintf("$%.0f", v)
}

func priceClause(price, budget, priceMatch float64) string {
	if priceMatch >= 100 {
		if price <= budget*wellUnderRatio {
			return fmt.Sprintf("Excellent value at %s, well under your %s budget", dollars(price), dollars(budget))
		}
		return fmt.Sprintf("Excellent value at %s, within your %s budget", dollars(price), dollars(budget))
	}
	over := scoring.OverageRatio(price, budget) * 100
	if over < 1 {
		return fmt.Sprintf("Priced at %s, just over your %s budget", dollars(price), dollars(budget))
	}
	return fmt.Sprintf("Priced at %s, %.0f%% over your %s budget", dollars(price), over, dollars(budget))
}

func roomsClause(p core.Property, minBedrooms int) string {
	rooms := fmt.Sprintf("%s and %s", plural(p.Bedrooms, "bedroom"), plural(p.Bathrooms, "bathroom"))
	switch diff := p.Bedrooms - minBedrooms; {
	case minBedrooms <= 0:
		return rooms
	case diff == 0:
		return fmt.Sprintf("%s, meets your %d+ bedroom minimum", rooms, minBedrooms)
	case diff > 0:
		return fmt.Sprintf("%s, %d more than your %d+ bedroom minimum", rooms, diff, minBedrooms)
	default:
		return fmt.Sprintf("%s, %d short of your %d+ bedroom minimum", rooms, -diff, minBedrooms)
	}
}

func schoolClause(rating float64) string {
	r := strconv.FormatFloat(rating, 'f', -1, 64)
	switch {
	case rating >= ExcellentSchool:
		return "Excellent school rating of " + r + "/10"
	case rating >= GoodSchool:
		return "Good school rating of " + r + "/10"
	default:
		return ""
	}
}

func commuteClause(minutes int) string {
	switch scoring.CommuteBucketOf(minutes) {
	case scoring.CommuteShort:
		return fmt.Sprintf("Short commute time of %d minutes", minutes)
	case scoring.CommuteReasonable:
		return fmt.Sprintf("Reasonable commute time of %d minutes", minutes)
	case scoring.CommuteModerate:
		return fmt.Sprintf("Moderate commute time of %d minutes", minutes)
	default:
		return fmt.Sprintf("Long commute time of %d minutes", minutes)
	}
}

func ageClause(yearBuilt, currentYear int) string {
	switch scoring.AgeBucketOf(currentYear - yearBuilt) {
	case scoring.AgeModern:
		return fmt.Sprintf("Recently built in %d (modern)", yearBuilt)
	case scoring.AgeWellMaintained:
		return fmt.Sprintf("Well-maintained home built in %d", yearBuilt)
	case scoring.AgeEstablished:
		return fmt.Sprintf("Established property from %d", yearBuilt)
	default:
		return fmt.Sprintf("Older home built in %d", yearBuilt)
	}
}

func plural(n int, word string) string {
	if n == 1 {
		return "1 " + word
	}
	return strconv.Itoa(n) + " " + word + "s"
}

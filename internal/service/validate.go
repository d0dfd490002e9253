package service

import (
	"regexp"
	"strconv"
	"time"
)

// ExpressTimeLayout is the accepted format of a shipment time.
const ExpressTimeLayout = "2006-01-02 15:04:05"

var (
	mobilephonePattern = regexp.MustCompile(`^1[3-9]\d{9}$`)
	qqPattern          = regexp.MustCompile(`^[1-9]\d{4,10}$`)
)

// IsMobilephone reports whether s looks like a mainland mobile number.
func IsMobilephone(s string) bool {
	return mobilephonePattern.MatchString(s)
}

// IsQQ reports whether s looks like a QQ number.
func IsQQ(s string) bool {
	return qqPattern.MatchString(s)
}

// parseExpressTime parses a shipment time in loc.
func parseExpressTime(s string, loc *time.Location) (time.Time, bool) {
	t, err := time.ParseInLocation(ExpressTimeLayout, s, loc)
	return t, err == nil
}

func parseID(field, s string) (int64, error) {
	if s == "" {
		return 0, invalid(field, "is required")
	}
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid(field, "must be a positive integer")
	}
	return id, nil
}

package dto

import (
	"github.com/lib/pq"
	"nub.ac.bd/transport/pkg/apperror"
)

// NormalizeWeekdays validates weekday numbers (0 = Sunday) and drops
// duplicates, keeping first-occurrence order. field names the set in the
// error message.
func NormalizeWeekdays[T ~int | ~int64](days []T, field string) (pq.Int64Array, error) {
	out := pq.Int64Array{}
	seen := make(map[int64]bool, len(days))
	for _, d := range days {
		day := int64(d)
		if day < 0 || day > 6 {
			return nil, apperror.BadRequest("%s must be between 0 and 6 (Sunday to Saturday)", field)
		}
		if seen[day] {
			continue
		}
		seen[day] = true
		out = append(out, day)
	}
	return out, nil
}

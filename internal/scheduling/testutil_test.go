package scheduling

import (
	"time"

	"aquagem-backend/internal/models"
	"aquagem-backend/internal/timeutil"
)

// 2026-01-06 is a Tuesday, 2026-01-07 a Wednesday.
var (
	tuesday   = time.Date(2026, 1, 6, 0, 0, 0, 0, timeutil.IST)
	wednesday = time.Date(2026, 1, 7, 0, 0, 0, 0, timeutil.IST)
)

func intPtr(v int) *int { return &v }

func customer(id int, routeID *int, policy *models.SchedulePolicy) *models.Customer {
	return &models.Customer{ID: id, Name: "Customer", RouteID: routeID, Schedule: policy, IsActive: true}
}

func daily() *models.SchedulePolicy {
	return &models.SchedulePolicy{Kind: models.ScheduleDaily}
}

func custom(days ...string) *models.SchedulePolicy {
	return &models.SchedulePolicy{Kind: models.ScheduleCustom, CustomDays: days}
}

func delivery(id, customerID int, status models.DeliveryStatus, at time.Time) *models.Delivery {
	return &models.Delivery{
		ID:            id,
		CustomerID:    customerID,
		DeliveryBoyID: 1,
		Date:          at,
		DeliveredQty:  2,
		Status:        status,
		CreatedAt:     at,
	}
}

package selector

import (
	"context"
	"errors"
	"fmt"
	"sort"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/lightspeedpay/gatewaycore/internal/models"
)

// ErrNoGatewayAvailable means no configured assignment survived the
// eligibility filter. The orchestration layer surfaces it as a retryable
// "service temporarily unavailable", never a silent drop.
var ErrNoGatewayAvailable = errors.New("no gateway available")

// Selection is the chosen assignment plus its gateway, with limits
// already reserved for the requested amount.
type Selection struct {
	Assignment *models.GatewayAssignment
	Gateway    *models.GatewayConfig
}

// Service picks one gateway assignment per initiation. Eligibility is
// filtered in memory, but the limit check-and-increment is a conditional
// UPDATE so concurrent initiations can never jointly exceed a limit.
type Service struct {
	db  *gorm.DB
	rdb *goredis.Client
	log *zap.SugaredLogger
}

func NewService(db *gorm.DB, rdb *goredis.Client, log *zap.SugaredLogger) *Service {
	return &Service{db: db, rdb: rdb, log: log}
}

// Select returns the highest-priority eligible assignment for the client
// and amount, reserving the amount against both the gateway's monthly
// limit and the assignment's daily limit. Tied rotation orders are cycled
// round-robin across calls for the same client.
func (s *Service) Select(ctx context.Context, client *models.ClientAccount, amount int64) (*Selection, error) {
	var assignments []*models.GatewayAssignment
	err := s.db.WithContext(ctx).
		Preload("Gateway").
		Where("client_id = ? AND is_active = true", client.ID).
		Find(&assignments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load gateway assignments: %w", err)
	}

	candidates := make([]*models.GatewayAssignment, 0, len(assignments))
	for _, a := range assignments {
		gw := a.Gateway
		if gw == nil || !gw.IsActive {
			continue
		}
		if gw.Environment != client.Environment {
			continue
		}
		// Limit checks here are advisory; the reservation below is the
		// authoritative, atomic one.
		if gw.MonthlyLimit > 0 && gw.CurrentMonthVolume+amount > gw.MonthlyLimit {
			continue
		}
		candidates = append(candidates, a)
	}
	if len(candidates) == 0 {
		return nil, ErrNoGatewayAvailable
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].RotationOrder < candidates[j].RotationOrder
	})
	candidates = s.rotateTies(ctx, client.ID, candidates)

	for _, a := range candidates {
		ok, err := s.reserve(ctx, a, amount)
		if err != nil {
			return nil, err
		}
		if ok {
			return &Selection{Assignment: a, Gateway: a.Gateway}, nil
		}
	}
	return nil, ErrNoGatewayAvailable
}

// rotateTies cycles the leading tie-set (equal rotation_order) using a
// per-client redis cursor so repeated calls do not always pick the same
// gateway. Redis being down degrades to fixed ordering, not failure.
func (s *Service) rotateTies(ctx context.Context, clientID string, candidates []*models.GatewayAssignment) []*models.GatewayAssignment {
	tie := 1
	for tie < len(candidates) && candidates[tie].RotationOrder == candidates[0].RotationOrder {
		tie++
	}
	if tie < 2 {
		return candidates
	}
	cursor, err := s.rdb.Incr(ctx, "selector:rr:"+clientID).Result()
	if err != nil {
		s.log.Warnw("rotation cursor unavailable", "err", err)
		return candidates
	}
	offset := int(cursor % int64(tie))
	rotated := make([]*models.GatewayAssignment, 0, len(candidates))
	rotated = append(rotated, candidates[offset:tie]...)
	rotated = append(rotated, candidates[:offset]...)
	rotated = append(rotated, candidates[tie:]...)
	return rotated
}

// reserve atomically increments both counters, checking the limits in
// the UPDATE itself. The daily counter resets via usage_date: usage
// accrued on a previous day counts as zero.
func (s *Service) reserve(ctx context.Context, a *models.GatewayAssignment, amount int64) (bool, error) {
	res := s.db.WithContext(ctx).Exec(`
		UPDATE gateway_config
		SET current_month_volume = current_month_volume + ?
		WHERE id = ? AND is_active = true AND deleted_at IS NULL
		  AND (monthly_limit = 0 OR current_month_volume + ? <= monthly_limit)`,
		amount, a.GatewayID, amount)
	if res.Error != nil {
		return false, fmt.Errorf("failed to reserve monthly volume: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	res = s.db.WithContext(ctx).Exec(`
		UPDATE gateway_assignment
		SET daily_usage = CASE WHEN usage_date = CURRENT_DATE THEN daily_usage + ? ELSE ? END,
		    usage_date = CURRENT_DATE
		WHERE id = ? AND is_active = true
		  AND (daily_limit = 0 OR
		       (CASE WHEN usage_date = CURRENT_DATE THEN daily_usage ELSE 0 END) + ? <= daily_limit)`,
		amount, amount, a.ID, amount)
	if res.Error != nil {
		s.releaseMonthly(ctx, a.GatewayID, amount)
		return false, fmt.Errorf("failed to reserve daily usage: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		s.releaseMonthly(ctx, a.GatewayID, amount)
		return false, nil
	}
	return true, nil
}

// Release returns a reservation after a definite initiation failure. A
// timed-out provider call is an unknown outcome and keeps its
// reservation until resolved.
func (s *Service) Release(ctx context.Context, sel *Selection, amount int64) {
	s.releaseMonthly(ctx, sel.Gateway.ID, amount)
	if err := s.db.WithContext(ctx).Exec(`
		UPDATE gateway_assignment
		SET daily_usage = GREATEST(daily_usage - ?, 0)
		WHERE id = ? AND usage_date = CURRENT_DATE`,
		amount, sel.Assignment.ID).Error; err != nil {
		s.log.Errorw("failed to release daily usage", "assignment_id", sel.Assignment.ID, "err", err)
	}
}

func (s *Service) releaseMonthly(ctx context.Context, gatewayID string, amount int64) {
	if err := s.db.WithContext(ctx).Exec(`
		UPDATE gateway_config
		SET current_month_volume = GREATEST(current_month_volume - ?, 0)
		WHERE id = ?`,
		amount, gatewayID).Error; err != nil {
		s.log.Errorw("failed to release monthly volume", "gateway_id", gatewayID, "err", err)
	}
}

package selector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lightspeedpay/gatewaycore/internal/models"
)

func TestRotateTies_SingleCandidateUntouched(t *testing.T) {
	s := &Service{log: zap.NewNop().Sugar()}
	in := []*models.GatewayAssignment{{ID: "a", RotationOrder: 10}}
	out := s.rotateTies(context.Background(), "client-1", in)
	require.Equal(t, in, out)
}

func TestRotateTies_NoTieKeepsOrder(t *testing.T) {
	s := &Service{log: zap.NewNop().Sugar()}
	in := []*models.GatewayAssignment{
		{ID: "a", RotationOrder: 10},
		{ID: "b", RotationOrder: 20},
		{ID: "c", RotationOrder: 30},
	}
	out := s.rotateTies(context.Background(), "client-1", in)
	require.Equal(t, "a", out[0].ID)
	require.Equal(t, "b", out[1].ID)
	require.Equal(t, "c", out[2].ID)
}

package investmentsrv

import (
	"context"
	"errors"

	"github.com/nammapaisa/server/internal/domain"
	"github.com/nammapaisa/server/internal/dto"
	"github.com/nammapaisa/server/internal/repository"
	"github.com/nammapaisa/server/internal/service"
	"github.com/nammapaisa/server/pkg/common"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type investmentService struct {
	investmentRepository repository.InvestmentRepository
}

// CreateInvestment implements InvestmentServices.
func (i *investmentService) CreateInvestment(ctx context.Context, userID uint64, req dto.UpsertInvestment) (*domain.Investment, error) {
	investment := dto.UpsertInvestmentToEntity(req, userID)

	// A fresh holding is worth what was put in until a value is reported.
	if investment.CurrentValue == 0 {
		investment.CurrentValue = investment.InvestedAmount
	}

	if err := i.investmentRepository.CreateInvestment(ctx, investment); err != nil {
		return nil, err
	}

	return investment, nil
}

// ListInvestments implements InvestmentServices.
func (i *investmentService) ListInvestments(ctx context.Context, userID uint64) ([]domain.Investment, error) {
	return i.investmentRepository.FindAll(ctx, userID)
}

// UpdateInvestment implements InvestmentServices.
func (i *investmentService) UpdateInvestment(ctx context.Context, userID, id uint64, req dto.UpsertInvestment) (*domain.Investment, error) {
	investment, err := i.investmentRepository.FindByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if investment == nil {
		return nil, common.ErrInvestmentNotFound
	}

	investment.Name = req.Name
	investment.Type = req.Type
	investment.InvestedAmount = req.InvestedAmount
	investment.CurrentValue = req.CurrentValue
	investment.Notes = req.Notes

	if err := i.investmentRepository.UpdateInvestment(ctx, investment); err != nil {
		return nil, err
	}

	return investment, nil
}

// DeleteInvestment implements InvestmentServices.
func (i *investmentService) DeleteInvestment(ctx context.Context, userID, id uint64) error {
	if err := i.investmentRepository.DeleteInvestment(ctx, userID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return common.ErrInvestmentNotFound
		}
		return err
	}

	return nil
}

// Allocation implements InvestmentServices.
//
// Groups the portfolio by type and reports each slice's share of the
// total current value.
func (i *investmentService) Allocation(ctx context.Context, userID uint64) (*dto.AllocationResponse, error) {
	investments, err := i.investmentRepository.FindAll(ctx, userID)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		invested decimal.Decimal
		current  decimal.Decimal
	}

	buckets := make(map[domain.InvestmentType]*bucket)
	order := make([]domain.InvestmentType, 0)
	totalInvested := decimal.Zero
	totalCurrent := decimal.Zero

	for _, investment := range investments {
		b, ok := buckets[investment.Type]
		if !ok {
			b = &bucket{}
			buckets[investment.Type] = b
			order = append(order, investment.Type)
		}
		b.invested = b.invested.Add(decimal.NewFromFloat(investment.InvestedAmount))
		b.current = b.current.Add(decimal.NewFromFloat(investment.CurrentValue))

		totalInvested = totalInvested.Add(decimal.NewFromFloat(investment.InvestedAmount))
		totalCurrent = totalCurrent.Add(decimal.NewFromFloat(investment.CurrentValue))
	}

	response := &dto.AllocationResponse{
		TotalInvested: totalInvested.Round(2).InexactFloat64(),
		TotalCurrent:  totalCurrent.Round(2).InexactFloat64(),
		ByType:        make([]dto.AllocationSlice, 0, len(order)),
	}

	hundred := decimal.NewFromInt(100)
	for _, investmentType := range order {
		b := buckets[investmentType]

		percent := 0.0
		if !totalCurrent.IsZero() {
			percent = b.current.Div(totalCurrent).Mul(hundred).Round(2).InexactFloat64()
		}

		response.ByType = append(response.ByType, dto.AllocationSlice{
			Type:           investmentType,
			InvestedAmount: b.invested.Round(2).InexactFloat64(),
			CurrentValue:   b.current.Round(2).InexactFloat64(),
			Percent:        percent,
		})
	}

	return response, nil
}

func NewInvestmentService(investmentRepository repository.InvestmentRepository) service.InvestmentServices {
	return &investmentService{investmentRepository: investmentRepository}
}

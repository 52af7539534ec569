/**
 * @description
 * Seeds the plan catalog: eight investment plans with their portfolio assets,
 * plus three sample promotion grants. Plans that already exist are skipped, so
 * the seeder is safe to run repeatedly.
 */
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/TempBiGmIkE/Creypinvest-master/internal/config"
	"github.com/TempBiGmIkE/Creypinvest-master/internal/domain"
	"github.com/TempBiGmIkE/Creypinvest-master/internal/store"
)

type seedAsset struct {
	symbol    string
	name      string
	assetType string
	pct       int   // whole percent of the plan
	price     int64 // in cents
}

type seedPlan struct {
	plan   domain.InvestmentPlan
	assets []seedAsset
}

func int64ptr(v int64) *int64 { return &v }

func seedPlans() []seedPlan {
	return []seedPlan{
		{
			plan: domain.InvestmentPlan{
				Name:        "Starter Portfolio",
				Category:    domain.PlanCategoryStarter,
				Description: "Perfect for beginners with limited capital. A balanced portfolio mixing crypto (30%), stocks (40%), bonds (20%), and cash (10%).",
				RiskLevel:   domain.RiskLevelModerate,

				MinimumInvestment:     10000,
				RecommendedInvestment: 50000,

				ExpectedAnnualReturnBps:  1250,
				HistoricalPerformanceBps: int64ptr(1180),

				CryptoAllocation: 30,
				StocksAllocation: 40,
				BondsAllocation:  20,
				CashAllocation:   10,

				DurationMonths: 12,

				IsAutomatedRebalancing:    true,
				AllowsMonthlyContribution: true,
				AllowsLumpSum:             true,

				ManagementFeeBps: 150,
				IsActive:         true,
			},
			assets: []seedAsset{
				{"BTC", "Bitcoin", domain.AssetTypeCrypto, 15, 4500000},
				{"ETH", "Ethereum", domain.AssetTypeCrypto, 15, 250000},
				{"SPY", "S&P 500 ETF", domain.AssetTypeStock, 40, 45000},
				{"BND", "Total Bond Market ETF", domain.AssetTypeBond, 20, 8250},
				{"USDC", "USD Coin (Stablecoin)", domain.AssetTypeCash, 10, 100},
			},
		},
		{
			plan: domain.InvestmentPlan{
				Name:        "Couples Investment Plan",
				Category:    domain.PlanCategoryCouples,
				Description: "Designed for couples looking to invest together. Provides steady growth with moderate risk for joint goals.",
				RiskLevel:   domain.RiskLevelModerate,

				MinimumInvestment:     100000,
				RecommendedInvestment: 500000,

				ExpectedAnnualReturnBps:  1400,
				HistoricalPerformanceBps: int64ptr(1320),

				CryptoAllocation:     25,
				StocksAllocation:     45,
				BondsAllocation:      20,
				RealEstateAllocation: 10,

				DurationMonths: 24,

				IsAutomatedRebalancing:    true,
				AllowsMonthlyContribution: true,
				AllowsLumpSum:             true,

				ManagementFeeBps: 120,
				IsActive:         true,
			},
			assets: []seedAsset{
				{"BTC", "Bitcoin", domain.AssetTypeCrypto, 15, 4500000},
				{"LINK", "Chainlink", domain.AssetTypeCrypto, 10, 2800},
				{"VOO", "Vanguard S&P 500 ETF", domain.AssetTypeStock, 30, 42000},
				{"VTI", "Vanguard Total Stock Market", domain.AssetTypeStock, 15, 24000},
				{"AGG", "Bloomberg Aggregate Bond ETF", domain.AssetTypeBond, 20, 10500},
				{"REIT", "Real Estate Investment Trust", domain.AssetTypeRealEstate, 10, 7500},
			},
		},
		{
			plan: domain.InvestmentPlan{
				Name:        "Retirement Growth Plan",
				Category:    domain.PlanCategoryRetirement,
				Description: "Long-term retirement planning with conservative growth. Focuses on stable assets with lower volatility.",
				RiskLevel:   domain.RiskLevelLow,

				MinimumInvestment:     500000,
				RecommendedInvestment: 1500000,

				ExpectedAnnualReturnBps:  900,
				HistoricalPerformanceBps: int64ptr(850),

				CryptoAllocation: 10,
				StocksAllocation: 40,
				BondsAllocation:  40,
				CashAllocation:   10,

				DurationMonths:            360,
				EarlyWithdrawalPenaltyBps: 1000,

				IsAutomatedRebalancing:    true,
				AllowsMonthlyContribution: true,
				AllowsLumpSum:             true,

				ManagementFeeBps: 80,
				IsActive:         true,
			},
			assets: []seedAsset{
				{"BTC", "Bitcoin", domain.AssetTypeCrypto, 10, 4500000},
				{"QQQ", "Nasdaq 100 ETF", domain.AssetTypeStock, 20, 38000},
				{"VTI", "Vanguard Total Stock Market", domain.AssetTypeStock, 20, 24000},
				{"BND", "Total Bond Market", domain.AssetTypeBond, 35, 8250},
				{"TLT", "iShares 20+ Year Treasury", domain.AssetTypeBond, 5, 9500},
				{"USDC", "USD Coin", domain.AssetTypeCash, 10, 100},
			},
		},
		{
			plan: domain.InvestmentPlan{
				Name:        "Education Fund Plan",
				Category:    domain.PlanCategoryEducation,
				Description: "Save for your child's education with a balanced growth strategy. Tax-optimized for education expenses.",
				RiskLevel:   domain.RiskLevelModerate,

				MinimumInvestment:     50000,
				RecommendedInvestment: 200000,

				ExpectedAnnualReturnBps:  1150,
				HistoricalPerformanceBps: int64ptr(1080),

				CryptoAllocation: 20,
				StocksAllocation: 50,
				BondsAllocation:  20,
				CashAllocation:   10,

				DurationMonths: 180,

				IsAutomatedRebalancing:    true,
				IsTaxOptimized:            true,
				AllowsMonthlyContribution: true,
				AllowsLumpSum:             true,

				ManagementFeeBps: 100,
				IsActive:         true,
			},
			assets: []seedAsset{
				{"BTC", "Bitcoin", domain.AssetTypeCrypto, 12, 4500000},
				{"ETH", "Ethereum", domain.AssetTypeCrypto, 8, 250000},
				{"SPY", "S&P 500 ETF", domain.AssetTypeStock, 35, 45000},
				{"VUG", "Vanguard Growth ETF", domain.AssetTypeStock, 15, 32000},
				{"BND", "Bond ETF", domain.AssetTypeBond, 20, 8250},
				{"USDC", "Stablecoin", domain.AssetTypeCash, 10, 100},
			},
		},
		{
			plan: domain.InvestmentPlan{
				Name:        "Travel Fund Plan",
				Category:    domain.PlanCategoryTravel,
				Description: "Accumulate funds for your dream vacation or adventure. Flexible withdrawal with moderate growth.",
				RiskLevel:   domain.RiskLevelModerate,

				MinimumInvestment:     20000,
				RecommendedInvestment: 100000,

				ExpectedAnnualReturnBps:  1300,
				HistoricalPerformanceBps: int64ptr(1250),

				CryptoAllocation: 35,
				StocksAllocation: 35,
				BondsAllocation:  20,
				CashAllocation:   10,

				DurationMonths: 24,

				IsAutomatedRebalancing:    true,
				AllowsMonthlyContribution: true,
				AllowsLumpSum:             true,

				ManagementFeeBps: 130,
				IsActive:         true,
			},
			assets: []seedAsset{
				{"BTC", "Bitcoin", domain.AssetTypeCrypto, 20, 4500000},
				{"SOL", "Solana", domain.AssetTypeCrypto, 15, 11000},
				{"VTI", "Total Market ETF", domain.AssetTypeStock, 25, 24000},
				{"VGIT", "Growth-focused ETF", domain.AssetTypeStock, 10, 8500},
				{"BND", "Bond ETF", domain.AssetTypeBond, 20, 8250},
			},
		},
		{
			plan: domain.InvestmentPlan{
				Name:        "Emergency Fund Safety Net",
				Category:    domain.PlanCategoryEmergency,
				Description: "Build a safety net with liquid, stable assets. Low risk with high accessibility.",
				RiskLevel:   domain.RiskLevelLow,

				MinimumInvestment:     10000,
				RecommendedInvestment: 100000,

				ExpectedAnnualReturnBps: 550,

				CryptoAllocation: 5,
				StocksAllocation: 15,
				BondsAllocation:  30,
				CashAllocation:   50,

				DurationMonths: 12,

				IsAutomatedRebalancing:    true,
				AllowsMonthlyContribution: true,
				AllowsLumpSum:             true,

				ManagementFeeBps: 50,
				IsActive:         true,
			},
			assets: []seedAsset{
				{"USDC", "USD Coin (Stablecoin)", domain.AssetTypeCash, 50, 100},
				{"USDT", "Tether (Stablecoin)", domain.AssetTypeCash, 5, 100},
				{"AGG", "Bond ETF", domain.AssetTypeBond, 30, 10500},
				{"SHV", "Short-term Treasury ETF", domain.AssetTypeBond, 10, 11000},
				{"BTC", "Bitcoin (Small allocation)", domain.AssetTypeCrypto, 5, 4500000},
			},
		},
		{
			plan: domain.InvestmentPlan{
				Name:        "Wealth Building Premium",
				Category:    domain.PlanCategoryWealth,
				Description: "Premium plan for high-net-worth individuals. Diversified across all asset classes with advanced strategies.",
				RiskLevel:   domain.RiskLevelHigh,

				MinimumInvestment:     5000000,
				RecommendedInvestment: 10000000,

				ExpectedAnnualReturnBps:  1850,
				HistoricalPerformanceBps: int64ptr(1780),

				CryptoAllocation:     40,
				StocksAllocation:     35,
				BondsAllocation:      15,
				RealEstateAllocation: 10,

				DurationMonths: 60,

				IsAutomatedRebalancing:    true,
				IsTaxOptimized:            true,
				AllowsMonthlyContribution: true,
				AllowsLumpSum:             true,

				ManagementFeeBps: 90,
				IsActive:         true,
			},
			assets: []seedAsset{
				{"BTC", "Bitcoin", domain.AssetTypeCrypto, 20, 4500000},
				{"ETH", "Ethereum", domain.AssetTypeCrypto, 15, 250000},
				{"MATIC", "Polygon", domain.AssetTypeCrypto, 5, 120},
				{"QQQ", "Nasdaq 100", domain.AssetTypeStock, 20, 38000},
				{"VUG", "Growth ETF", domain.AssetTypeStock, 15, 32000},
				{"TLT", "Long-term Treasury", domain.AssetTypeBond, 15, 9500},
				{"REIT", "Real Estate Fund", domain.AssetTypeRealEstate, 10, 7500},
			},
		},
		{
			plan: domain.InvestmentPlan{
				Name:        "Crypto Growth Aggressive",
				Category:    domain.PlanCategoryCrypto,
				Description: "For adventurous investors seeking high returns. Concentrated in cryptocurrencies and blockchain assets.",
				RiskLevel:   domain.RiskLevelHigh,

				MinimumInvestment:     50000,
				RecommendedInvestment: 500000,

				ExpectedAnnualReturnBps:  3500,
				HistoricalPerformanceBps: int64ptr(3250),

				CryptoAllocation: 85,
				StocksAllocation: 10,
				CashAllocation:   5,

				DurationMonths:            24,
				EarlyWithdrawalPenaltyBps: 1500,

				IsAutomatedRebalancing:    true,
				AllowsMonthlyContribution: true,
				AllowsLumpSum:             true,

				ManagementFeeBps: 200,
				IsActive:         true,
			},
			assets: []seedAsset{
				{"BTC", "Bitcoin", domain.AssetTypeCrypto, 40, 4500000},
				{"ETH", "Ethereum", domain.AssetTypeCrypto, 25, 250000},
				{"SOL", "Solana", domain.AssetTypeCrypto, 10, 11000},
				{"AVAX", "Avalanche", domain.AssetTypeCrypto, 10, 8500},
				{"SPY", "S&P 500 ETF", domain.AssetTypeStock, 10, 45000},
				{"USDC", "Stablecoin Reserve", domain.AssetTypeCash, 5, 100},
			},
		},
	}
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	_ = godotenv.Load()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()

	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.ConnConfig.DefaultQueryExecMode = pgx.QueryExecModeSimpleProtocol

	dbpool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()

	if err := store.Migrate(ctx, dbpool); err != nil {
		logger.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	repo := store.NewPlanRepository(dbpool)
	now := time.Now().UTC()

	planIDs := map[string]*domain.InvestmentPlan{}
	created := 0
	for _, sp := range seedPlans() {
		plan := sp.plan
		createdPlan, err := repo.CreatePlan(ctx, &plan)
		if err != nil {
			if errors.Is(err, store.ErrDuplicatePlanName) {
				logger.Info("plan already exists, skipping", "name", plan.Name)
				continue
			}
			logger.Error("plan creation failed", "name", plan.Name, "error", err)
			os.Exit(1)
		}
		planIDs[createdPlan.Name] = createdPlan

		for _, a := range sp.assets {
			_, err := repo.AddPlanAsset(ctx, &domain.PlanPortfolioAsset{
				PlanID:        createdPlan.ID,
				AssetType:     a.assetType,
				Symbol:        a.symbol,
				Name:          a.name,
				AllocationBps: int64(a.pct) * 100,
				CurrentPrice:  a.price,
				IsActive:      true,
			})
			if err != nil {
				logger.Error("asset creation failed", "plan", plan.Name, "symbol", a.symbol, "error", err)
				os.Exit(1)
			}
		}

		created++
		logger.Info("plan created", "name", createdPlan.Name, "assets", len(sp.assets))
	}

	grants := []domain.PromotionGrant{
		{
			GrantType:                 domain.GrantTypeWelcomeBonus,
			Name:                      "New Investor Welcome Bonus",
			Description:               "Get 5% bonus on your first investment",
			GrantPercentageBps:        int64ptr(500),
			MinimumInvestmentRequired: 10000,
			MaximumGrantPerUser:       int64ptr(50000),
			ValidFrom:                 now,
			ValidUntil:                now.Add(90 * 24 * time.Hour),
			IsActive:                  true,
		},
		{
			GrantType:                 domain.GrantTypeReferral,
			Name:                      "Couples Referral Bonus",
			Description:               "Earn $200 for each friend who subscribes",
			GrantAmount:               int64ptr(20000),
			MinimumInvestmentRequired: 100000,
			ValidFrom:                 now,
			ValidUntil:                now.Add(365 * 24 * time.Hour),
			IsActive:                  true,
		},
		{
			GrantType:                 domain.GrantTypeMilestone,
			Name:                      "Milestone Reward - $10K",
			Description:               "Invest $10,000 and get $500 bonus",
			GrantAmount:               int64ptr(50000),
			MinimumInvestmentRequired: 1000000,
			ValidFrom:                 now,
			ValidUntil:                now.Add(180 * 24 * time.Hour),
			IsActive:                  true,
		},
	}
	grantPlans := []string{"Starter Portfolio", "Couples Investment Plan", "Crypto Growth Aggressive"}

	for i, grant := range grants {
		plan, ok := planIDs[grantPlans[i]]
		if !ok {
			logger.Info("grant target plan not created this run, skipping", "grant", grant.Name)
			continue
		}
		grant.PlanID = plan.ID
		if _, err := repo.CreateGrant(ctx, &grant); err != nil {
			logger.Error("grant creation failed", "name", grant.Name, "error", err)
			os.Exit(1)
		}
		logger.Info("grant created", "name", grant.Name, "plan", plan.Name)
	}

	logger.Info("seed finished", "plans_created", created)
}

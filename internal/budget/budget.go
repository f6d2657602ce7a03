// Package budget ensures a monthly AWS cost budget with an e-mail alert exists.
package budget

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/budgets"
	"github.com/aws/aws-sdk-go-v2/service/budgets/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/zulandar/roadmapper/internal/retry"
)

// Spec describes the budget to ensure.
type Spec struct {
	Name             string
	LimitUSD         string
	ThresholdPercent float64
	Email            string
}

// DefaultSpec is the $5/month learning budget alerting at 80% of actual spend.
func DefaultSpec(email string) Spec {
	return Spec{
		Name:             "LearningBudget-$5",
		LimitUSD:         "5",
		ThresholdPercent: 80,
		Email:            email,
	}
}

// budgetsAPI abstracts the Budgets methods we use, enabling test mocks.
type budgetsAPI interface {
	DescribeBudget(ctx context.Context, in *budgets.DescribeBudgetInput, optFns ...func(*budgets.Options)) (*budgets.DescribeBudgetOutput, error)
	CreateBudget(ctx context.Context, in *budgets.CreateBudgetInput, optFns ...func(*budgets.Options)) (*budgets.CreateBudgetOutput, error)
}

// identityAPI abstracts the STS call used to resolve the account id.
type identityAPI interface {
	GetCallerIdentity(ctx context.Context, in *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Client manages budgets for the caller's AWS account.
type Client struct {
	budgets   budgetsAPI
	identity  identityAPI
	accountID string
}

// New loads the default AWS credential chain for region. It performs no
// network call; the account id is resolved lazily.
func New(ctx context.Context, region string) (*Client, error) {
	cfg, err := loadAWSConfig(ctx, region)
	if err != nil {
		return nil, err
	}
	return &Client{
		budgets:  budgets.NewFromConfig(cfg),
		identity: sts.NewFromConfig(cfg),
	}, nil
}

// loadAWSConfig turns off the SDK's own retryer so throttling is retried
// only by the caller's retry policy.
func loadAWSConfig(ctx context.Context, region string) (aws.Config, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("budget: load aws config: %w", err)
	}
	return cfg, nil
}

func newWithAPIs(b budgetsAPI, id identityAPI) *Client {
	return &Client{budgets: b, identity: id}
}

func (c *Client) account(ctx context.Context) (string, error) {
	if c.accountID != "" {
		return c.accountID, nil
	}
	out, err := c.identity.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", classify(fmt.Errorf("budget: get caller identity: %w", err))
	}
	c.accountID = aws.ToString(out.Account)
	if c.accountID == "" {
		return "", fmt.Errorf("budget: caller identity returned no account id")
	}
	return c.accountID, nil
}

// Exists reports whether a budget named name exists in the account.
func (c *Client) Exists(ctx context.Context, name string) (bool, error) {
	acct, err := c.account(ctx)
	if err != nil {
		return false, err
	}
	_, err = c.budgets.DescribeBudget(ctx, &budgets.DescribeBudgetInput{
		AccountId:  aws.String(acct),
		BudgetName: aws.String(name),
	})
	var nf *types.NotFoundException
	if errors.As(err, &nf) {
		return false, nil
	}
	if err != nil {
		return false, classify(fmt.Errorf("budget: describe %s: %w", name, err))
	}
	return true, nil
}

// Create creates the budget and its alert subscription.
func (c *Client) Create(ctx context.Context, spec Spec) error {
	acct, err := c.account(ctx)
	if err != nil {
		return err
	}
	in := &budgets.CreateBudgetInput{
		AccountId: aws.String(acct),
		Budget: &types.Budget{
			BudgetName: aws.String(spec.Name),
			BudgetLimit: &types.Spend{
				Amount: aws.String(spec.LimitUSD),
				Unit:   aws.String("USD"),
			},
			TimeUnit:   types.TimeUnitMonthly,
			BudgetType: types.BudgetTypeCost,
		},
	}
	if spec.Email != "" {
		in.NotificationsWithSubscribers = []types.NotificationWithSubscribers{{
			Notification: &types.Notification{
				NotificationType:   types.NotificationTypeActual,
				ComparisonOperator: types.ComparisonOperatorGreaterThan,
				Threshold:          spec.ThresholdPercent,
				ThresholdType:      types.ThresholdTypePercentage,
			},
			Subscribers: []types.Subscriber{{
				SubscriptionType: types.SubscriptionTypeEmail,
				Address:          aws.String(spec.Email),
			}},
		}}
	}
	if _, err := c.budgets.CreateBudget(ctx, in); err != nil {
		return classify(fmt.Errorf("budget: create %s: %w", spec.Name, err))
	}
	return nil
}

func classify(err error) error {
	var throttled *types.ThrottlingException
	var internal *types.InternalErrorException
	if errors.As(err, &throttled) || errors.As(err, &internal) {
		return retry.MarkTransient(err)
	}
	return err
}

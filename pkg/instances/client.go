/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package instances

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/smithy-go"

	"github.com/NVIDIA/devhosts/pkg/config"
	"github.com/NVIDIA/devhosts/pkg/defaults"
	cnserrors "github.com/NVIDIA/devhosts/pkg/errors"
)

// DescribeInstancesAPI is the subset of the EC2 client used by Client.
type DescribeInstancesAPI interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

// Lister lists discovered instances.
type Lister interface {
	ListInstances(ctx context.Context) ([]Instance, error)
}

// Client discovers tagged service instances.
type Client struct {
	api            DescribeInstancesAPI
	mapper         Mapper
	ownerTagKey    string
	ownerTagValues []string
}

// Option configures a Client.
type Option func(*Client)

// WithConfig copies the tag keys, owner allow-list and environment table from cfg.
func WithConfig(cfg *config.Config) Option {
	return func(c *Client) {
		c.mapper = Mapper{
			ServiceTagKey:     cfg.ServiceTagKey,
			EnvironmentTagKey: cfg.EnvironmentTagKey,
			Environments:      cfg.Environments,
		}
		c.ownerTagKey = cfg.OwnerTagKey
		c.ownerTagValues = cfg.OwnerTagValues
	}
}

// WithOwnerTag sets the ownership tag and its allowed values.
func WithOwnerTag(key string, values ...string) Option {
	return func(c *Client) {
		c.ownerTagKey = key
		c.ownerTagValues = values
	}
}

// WithMapper replaces the instance mapper.
func WithMapper(m Mapper) Option {
	return func(c *Client) {
		c.mapper = m
	}
}

// New returns a Client using api. Without options it uses the values of
// config.Default.
func New(api DescribeInstancesAPI, opts ...Option) *Client {
	c := &Client{api: api}
	WithConfig(config.Default())(c)
	for _, o := range opts {
		o(c)
	}
	return c
}

// NewFromConfig loads the AWS configuration (region and optional shared
// profile from cfg) and returns a Client backed by EC2.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Client, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.Profile != "" {
		loadOpts = append(loadOpts, awsconfig.WithSharedConfigProfile(cfg.Profile))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, cnserrors.Wrap(cnserrors.ErrCodeUnauthorized, "failed to load aws configuration", err)
	}

	return New(ec2.NewFromConfig(awsCfg), WithConfig(cfg)), nil
}

// Filters returns the two tag filters sent with DescribeInstances.
func (c *Client) Filters() []types.Filter {
	return []types.Filter{
		{
			Name:   aws.String("tag:" + c.ownerTagKey),
			Values: c.ownerTagValues,
		},
		{
			Name:   aws.String("tag:" + c.mapper.EnvironmentTagKey),
			Values: sortedKeys(c.mapper.Environments),
		},
	}
}

// ListInstances issues a single DescribeInstances call and maps the
// reservations it returns. Further pages are not requested.
func (c *Client) ListInstances(ctx context.Context) ([]Instance, error) {
	slog.Debug("describing instances", "filters", len(c.Filters()))

	ctx, cancel := context.WithTimeout(ctx, defaults.DescribeInstancesTimeout)
	defer cancel()

	out, err := c.api.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: c.Filters(),
	})
	if err != nil {
		return nil, classify(err)
	}

	if out.NextToken != nil {
		slog.Warn("describe instances returned more pages, only the first is used")
	}

	instances, err := c.mapper.MapReservations(out.Reservations)
	if err != nil {
		return nil, err
	}

	slog.Debug("instances discovered",
		"reservations", len(out.Reservations),
		"instances", len(instances))
	return instances, nil
}

// Find returns the first instance named name.
func Find(instances []Instance, name string) (Instance, bool) {
	for _, i := range instances {
		if i.Name == name {
			return i, true
		}
	}
	return Instance{}, false
}

var authErrorCodes = map[string]struct{}{
	"AuthFailure":           {},
	"UnauthorizedOperation": {},
	"ExpiredToken":          {},
	"RequestExpired":        {},
	"InvalidClientTokenId":  {},
	"SignatureDoesNotMatch": {},
}

func classify(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return cnserrors.Wrap(cnserrors.ErrCodeTimeout, "describe instances timed out", err)
	case errors.Is(err, context.Canceled):
		return cnserrors.Wrap(cnserrors.ErrCodeCancelled, "describe instances cancelled", err)
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		if _, ok := authErrorCodes[apiErr.ErrorCode()]; ok {
			return cnserrors.Wrap(cnserrors.ErrCodeUnauthorized,
				fmt.Sprintf("describe instances: %s", apiErr.ErrorCode()), err)
		}
	}
	return cnserrors.Wrap(cnserrors.ErrCodeUnavailable, "describe instances failed", err)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

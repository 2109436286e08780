/*
Copyright © 2025 NVIDIA Corporation
SPDX-License-Identifier: Apache-2.0
*/

package instances

import (
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"

	cnserrors "github.com/NVIDIA/devhosts/pkg/errors"
)

var (
	// ErrMissingTag is matched (errors.Is) by every TagError.
	ErrMissingTag = cnserrors.New(cnserrors.ErrCodePreconditionFailed, "instance is missing a required tag")

	// ErrUnknownEnvironment is returned when an environment tag value has no alias.
	ErrUnknownEnvironment = cnserrors.New(cnserrors.ErrCodePreconditionFailed, "instance environment has no alias")
)

// TagError reports a required tag absent from an instance.
type TagError struct {
	InstanceID string
	Key        string
}

func (e *TagError) Error() string {
	return fmt.Sprintf("instance %q is missing tag %q", e.InstanceID, e.Key)
}

// Unwrap ties TagError to ErrMissingTag.
func (e *TagError) Unwrap() error {
	return ErrMissingTag
}

// Instance is a discovered service instance.
type Instance struct {
	// Name is <service>.<environment alias>, e.g. auth.dev.
	Name    string `json:"name" yaml:"name"`
	Address string `json:"address" yaml:"address"`
}

// Mapper turns provider instances into Instances.
type Mapper struct {
	ServiceTagKey     string
	EnvironmentTagKey string
	// Environments maps raw environment tag values to aliases.
	Environments map[string]string
}

// FirstInstance returns the first instance of a reservation. Only that
// instance represents the reservation; the others are ignored.
func FirstInstance(r types.Reservation) (types.Instance, bool) {
	if len(r.Instances) == 0 {
		return types.Instance{}, false
	}
	return r.Instances[0], true
}

// HasPublicAddress reports whether inst has a non-empty public IPv4 address.
func HasPublicAddress(inst types.Instance) bool {
	return strings.TrimSpace(aws.ToString(inst.PublicIpAddress)) != ""
}

// Map derives the Instance of inst. It fails with a *TagError when the
// service or environment tag is absent and with ErrUnknownEnvironment when
// the environment tag value is not in the table.
func (m Mapper) Map(inst types.Instance) (Instance, error) {
	id := aws.ToString(inst.InstanceId)

	service, ok := tagValue(inst.Tags, m.ServiceTagKey)
	if !ok {
		return Instance{}, &TagError{InstanceID: id, Key: m.ServiceTagKey}
	}
	env, ok := tagValue(inst.Tags, m.EnvironmentTagKey)
	if !ok {
		return Instance{}, &TagError{InstanceID: id, Key: m.EnvironmentTagKey}
	}

	alias, ok := m.Environments[env]
	if !ok {
		return Instance{}, cnserrors.WrapWithContext(cnserrors.ErrCodePreconditionFailed,
			"unknown environment", ErrUnknownEnvironment,
			map[string]any{"instance": id, "environment": env})
	}

	return Instance{
		Name:    service + "." + alias,
		Address: aws.ToString(inst.PublicIpAddress),
	}, nil
}

// MapReservations applies the first-instance policy to every reservation,
// drops those without a public address and maps the rest. The first
// mapping error aborts.
func (m Mapper) MapReservations(reservations []types.Reservation) ([]Instance, error) {
	out := make([]Instance, 0, len(reservations))
	for _, r := range reservations {
		inst, ok := FirstInstance(r)
		if !ok || !HasPublicAddress(inst) {
			continue
		}
		mapped, err := m.Map(inst)
		if err != nil {
			return nil, err
		}
		out = append(out, mapped)
	}
	return out, nil
}

func tagValue(tags []types.Tag, key string) (string, bool) {
	for _, t := range tags {
		if aws.ToString(t.Key) == key {
			return aws.ToString(t.Value), true
		}
	}
	return "", false
}

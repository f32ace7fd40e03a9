package dynamo

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/event-notify/internal/domain"
)

// mapConditionErr turns a failed attribute_exists / attribute_not_exists check
// into the matching domain error. Other errors pass through unchanged.
func mapConditionErr(err error, notFoundMsg string) error {
	if err == nil {
		return nil
	}
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("%s: %w", notFoundMsg, domain.ErrNotFound)
	}
	return err
}

package service

import (
	"assetbook/pkg/model"
)

// canMutate decides whether the actor may update or delete the usage:
// its owner may, and so may anyone holding the manager role. Create never
// consults the guard because the new record's owner is forced to the actor.
func canMutate(actor model.Actor, usage *model.Usage) bool {
	return actor.SubjectID == usage.UserID || actor.IsManager()
}

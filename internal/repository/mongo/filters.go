package mongo

import (
	"coachdesk/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// clientFilter builds the filter matching rows that belong to the given
// customer or lead. Rows only ever carry one of the two fields, so matching
// on the populated one is sufficient.
func clientFilter(client domain.ClientRef) bson.M {
	switch {
	case client.CustomerID != nil:
		return bson.M{"customerId": *client.CustomerID}
	case client.LeadID != nil:
		return bson.M{"leadId": *client.LeadID}
	default:
		// Matches nothing; callers validate refs before reaching the repo.
		return bson.M{"_id": primitive.NilObjectID}
	}
}

// budgetClientFilter matches rows for a (budget, client) pair, used by the
// assignment-deletion cascade.
func budgetClientFilter(budgetID primitive.ObjectID, client domain.ClientRef) bson.M {
	filter := clientFilter(client)
	filter["budgetId"] = budgetID
	return filter
}

// clientSetFields returns the $set document that re-points rows from one
// client to another, unsetting the old ref field. Used by lead conversion.
func clientSetFields(to domain.ClientRef) (set bson.M, unset bson.M) {
	set = bson.M{}
	unset = bson.M{}
	if to.CustomerID != nil {
		set["customerId"] = *to.CustomerID
		unset["leadId"] = ""
	} else if to.LeadID != nil {
		set["leadId"] = *to.LeadID
		unset["customerId"] = ""
	}
	return set, unset
}

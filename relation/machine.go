package relation

// ExtractSides returns the viewer's own flag and the counterpart's flag.
func ExtractSides(r *Relation, viewer int64) (own Flag, other Flag, err error) {
	switch viewer {
	case r.UserA:
		return r.Status.A, r.Status.B, nil
	case r.UserB:
		return r.Status.B, r.Status.A, nil
	}
	return None, None, ErrInvalidParticipant
}

// DeriveStatus maps a pair of flags to what the owner of the first flag sees.
func DeriveStatus(own, other Flag) VisibleStatus {
	switch own {
	case None:
		if other == Invited {
			return StatusInvited
		}
		return StatusNone

	case Invited:
		switch other {
		case None:
			return StatusInviting
		case Invited, Accepted:
			return StatusFriends
		case Rejected:
			return StatusRejected
		case Blocked:
			return StatusBlocked
		}

	case Accepted:
		switch other {
		case Invited, Accepted:
			return StatusFriends
		case Rejected:
			return StatusRejected
		case Blocked:
			return StatusBlocked
		}
		return StatusNone

	case Rejected:
		if other == Blocked {
			return StatusBlocked
		}
		return StatusRejecting

	case Blocked:
		return StatusBlocking
	}

	return StatusNone
}

// ApplyAction computes the status after acting performs action. Only the
// acting side changes, except for the two upgrades to mutual friendship.
func ApplyAction(r *Relation, acting int64, action Action) (Status, error) {

	_, other, err := ExtractSides(r, acting)
	if err != nil {
		return r.Status, err
	}

	var own Flag

	switch action {
	case Invite:
		if other == Invited || other == Accepted {
			return Status{A: Accepted, B: Accepted}, nil
		}
		own = Invited
	case Accept:
		if other == Invited {
			return Status{A: Accepted, B: Accepted}, nil
		}
		own = Accepted
	case Reject:
		own = Rejected
	case Block:
		own = Blocked
	case Remove:
		own = None
	default:
		return r.Status, ErrInvalidAction
	}

	if acting == r.UserA {
		return Status{A: own, B: other}, nil
	}
	return Status{A: other, B: own}, nil
}

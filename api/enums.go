package api

type SignupStatus int32

const (
	SignupStatus_INVITED   = SignupStatus(0)
	SignupStatus_TENTATIVE = SignupStatus(1)
	SignupStatus_ACCEPTED  = SignupStatus(2)
	SignupStatus_APPROVED  = SignupStatus(3)
	SignupStatus_CANCELLED = SignupStatus(4)
)

type DbDriver string

const (
	DriverCassandra = DbDriver("cassandra")
	DriverSQLite    = DbDriver("sqlite")
)

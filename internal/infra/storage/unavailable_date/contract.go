package unavailable_date

import "github.com/m04kA/SMC-ClinicBooking/pkg/dbmetrics"

type DBExecutor = dbmetrics.DBExecutor

// Package quality holds the Ignition-compatible QualityCode catalog used as
// the standard "Quality" metric property (see pkg/metric's Quality helper).
package quality

// Code is a 32-bit OPC-UA/Ignition-style quality indicator.
type Code int32

const (
	Bad                      Code = -2147483136
	BadAccessDenied          Code = -2147483134
	BadAggregateNotFound     Code = -2147483127
	BadDatabaseNotConnected  Code = -2147483123
	BadDisabled              Code = -2147483133
	BadFailure               Code = -2147483121
	BadGatewayCommOff        Code = -2147483125
	BadLicenseExceeded       Code = -2147483130
	BadNotConnected          Code = -2147483126
	BadNotFound              Code = -2147483129
	BadOutOfRange            Code = -2147483124
	BadReadOnly              Code = -2147483122
	BadReferenceNotFound     Code = -2147483128
	BadStale                 Code = -2147483132
	BadTrialExpired          Code = -2147483131
	BadUnauthorized          Code = -2147483135
	BadUnsupported           Code = -2147483120
	Error                    Code = -1073741056
	ErrorConfiguration       Code = -1073741055
	ErrorCycleDetected       Code = -1073741044
	ErrorDatabaseQuery       Code = -1073741051
	ErrorException           Code = -1073741048
	ErrorExpressionEval      Code = -1073741054
	ErrorFormatting          Code = -1073741046
	ErrorIO                  Code = -1073741050
	ErrorInvalidPathSyntax   Code = -1073741047
	ErrorScriptEval          Code = -1073741045
	ErrorTagExecution        Code = -1073741053
	ErrorTimeoutExpired      Code = -1073741049
	ErrorTypeConversion      Code = -1073741052
	Good                     Code = 192
	GoodInitial              Code = 201
	GoodProvisional          Code = 200
	GoodUnspecified          Code = 0
	GoodWritePending         Code = 2
	Uncertain                Code = 1073742080
	UncertainDataSubNormal   Code = 1073742083
	UncertainEngUnitsExceed  Code = 1073742084
	UncertainIncompleteOp    Code = 1073742085
	UncertainInitialValue    Code = 1073742082
	UncertainLastKnownValue  Code = 1073742081
)

// String returns the catalog name for c, or "Unknown" for a code not in
// the catalog.
func (c Code) String() string {
	if name, ok := names[c]; ok {
		return name
	}
	return "Unknown"
}

var names = map[Code]string{
	Bad:                     "Bad",
	BadAccessDenied:         "Bad_AccessDenied",
	BadAggregateNotFound:    "Bad_AggregateNotFound",
	BadDatabaseNotConnected: "Bad_DatabaseNotConnected",
	BadDisabled:             "Bad_Disabled",
	BadFailure:              "Bad_Failure",
	BadGatewayCommOff:       "Bad_GatewayCommOff",
	BadLicenseExceeded:      "Bad_LicenseExceeded",
	BadNotConnected:         "Bad_NotConnected",
	BadNotFound:             "Bad_NotFound",
	BadOutOfRange:           "Bad_OutOfRange",
	BadReadOnly:             "Bad_ReadOnly",
	BadReferenceNotFound:    "Bad_ReferenceNotFound",
	BadStale:                "Bad_Stale",
	BadTrialExpired:         "Bad_TrialExpired",
	BadUnauthorized:         "Bad_Unauthorized",
	BadUnsupported:          "Bad_Unsupported",
	Error:                   "Error",
	ErrorConfiguration:      "Error_Configuration",
	ErrorCycleDetected:      "Error_CycleDetected",
	ErrorDatabaseQuery:      "Error_DatabaseQuery",
	ErrorException:          "Error_Exception",
	ErrorExpressionEval:     "Error_ExpressionEval",
	ErrorFormatting:         "Error_Formatting",
	ErrorIO:                 "Error_IO",
	ErrorInvalidPathSyntax:  "Error_InvalidPathSyntax",
	ErrorScriptEval:         "Error_ScriptEval",
	ErrorTagExecution:       "Error_TagExecution",
	ErrorTimeoutExpired:     "Error_TimeoutExpired",
	ErrorTypeConversion:     "Error_TypeConversion",
	Good:                    "Good",
	GoodInitial:             "Good_Initial",
	GoodProvisional:         "Good_Provisional",
	GoodUnspecified:         "Good_Unspecified",
	GoodWritePending:        "Good_WritePending",
	Uncertain:               "Uncertain",
	UncertainDataSubNormal:  "Uncertain_DataSubNormal",
	UncertainEngUnitsExceed: "Uncertain_EngineeringUnitsExceeded",
	UncertainIncompleteOp:   "Uncertain_IncompleteOperation",
	UncertainInitialValue:   "Uncertain_InitialValue",
	UncertainLastKnownValue: "Uncertain_LastKnownValue",
}

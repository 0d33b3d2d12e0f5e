package voices

import "go.opentelemetry.io/contrib/bridges/otelslog"

const scopeName = "github.com/koscakluka/linguaflow/core/voices"

var logger = otelslog.NewLogger(scopeName)

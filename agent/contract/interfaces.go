package contract

import (
	einomodel "github.com/cloudwego/eino/components/model"
)

// ChatModel is the model capability the tools are built on. Both backends
// satisfy it and wrap their failures with ErrModelInvoke. Retry or backoff
// belongs in a wrapper around this interface, not in the tools.
type ChatModel = einomodel.BaseChatModel

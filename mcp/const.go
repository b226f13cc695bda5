package mcp

// Operation names accepted by the dispatcher.
const (
	OpGetSceneInfo  = "mcp_modelweb_get_scene_info"
	OpGetObjectInfo = "mcp_modelweb_get_object_info"
	OpListObjects   = "mcp_modelweb_list_objects"
	OpCreateObject  = "mcp_modelweb_create_object"
	OpModifyObject  = "mcp_modelweb_modify_object"
	OpDeleteObject  = "mcp_modelweb_delete_object"
	OpSetMaterial   = "mcp_modelweb_set_material"
	OpUndo          = "mcp_modelweb_undo"
	OpRedo          = "mcp_modelweb_redo"
	OpGetHistory    = "mcp_modelweb_get_history"
	OpBeginEdit     = "mcp_modelweb_begin_edit"
	OpUpdateEdit    = "mcp_modelweb_update_edit"
	OpCommitEdit    = "mcp_modelweb_commit_edit"
	OpCancelEdit    = "mcp_modelweb_cancel_edit"
	OpLoadScene     = "mcp_modelweb_load_scene"
	OpSaveScene     = "mcp_modelweb_save_scene"
	OpExportScene   = "mcp_modelweb_export_scene"
	OpListScenes    = "mcp_modelweb_list_scene_files"
)

// Status is the outcome tag of a response.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// ErrorCode is the closed set of error codes a response may carry.
type ErrorCode string

const (
	CodeNoScene            ErrorCode = "NO_SCENE"
	CodeInvalidParams      ErrorCode = "INVALID_PARAMS"
	CodeObjectNotFound     ErrorCode = "OBJECT_NOT_FOUND"
	CodeCreationFailed     ErrorCode = "CREATION_FAILED"
	CodeModificationFailed ErrorCode = "MODIFICATION_FAILED"
	CodeDeletionFailed     ErrorCode = "DELETION_FAILED"
	CodeNoHistory          ErrorCode = "NO_HISTORY"
	CodeCannotUndo         ErrorCode = "CANNOT_UNDO"
	CodeCannotRedo         ErrorCode = "CANNOT_REDO"
	CodeUnknownFunction    ErrorCode = "UNKNOWN_FUNCTION"
	CodeExecutionError     ErrorCode = "EXECUTION_ERROR"
	CodeInvalidRequest     ErrorCode = "INVALID_REQUEST"
)

// UnknownRequestID is echoed when a request carried no usable ID.
const UnknownRequestID = "unknown"

package api

import "github.com/santhosh-tekuri/jsonschema/v5"

// Request-body shapes are checked against embedded JSON Schemas before any
// field rule runs, so handlers never see unexpected fields or wrong types.

const createTaskBodySchema = `{
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"description": {"type": ["string", "null"]},
		"position": {"enum": ["start", "end"]}
	},
	"required": ["title"],
	"additionalProperties": false
}`

const updateTaskBodySchema = `{
	"type": "object",
	"properties": {
		"title": {"type": "string"},
		"description": {"type": ["string", "null"]}
	},
	"required": ["title"],
	"additionalProperties": false
}`

const reorderBodySchema = `{
	"type": "object",
	"properties": {
		"taskIds": {
			"type": "array",
			"items": {"type": "integer"},
			"minItems": 1
		}
	},
	"required": ["taskIds"],
	"additionalProperties": false
}`

var (
	createTaskSchema = jsonschema.MustCompileString("create-task.json", createTaskBodySchema)
	updateTaskSchema = jsonschema.MustCompileString("update-task.json", updateTaskBodySchema)
	reorderSchema    = jsonschema.MustCompileString("reorder.json", reorderBodySchema)
)

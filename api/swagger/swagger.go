package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Planbook API",
        "description": "Lesson planning and student progress tracking backend",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Teacher accounts and tokens"},
        {"name": "Students", "description": "Class roster"},
        {"name": "LearningExperiences", "description": "Planned lesson catalogue"},
        {"name": "Lessons", "description": "Weekly plan scheduling"},
        {"name": "Evidence", "description": "Observation evidence"},
        {"name": "Progress", "description": "Aggregated student progress"},
        {"name": "Worksheets", "description": "Tiered worksheet generation"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register teacher account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate teacher",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Current teacher profile",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "year_level", "in": "query", "type": "integer"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Add student to roster",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Students"],
                "summary": "Update student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Deactivate student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/students/{id}/evidence": {
            "get": {
                "tags": ["Evidence"],
                "summary": "List a student's evidence",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "learning_experience_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/learning-experiences": {
            "get": {
                "tags": ["LearningExperiences"],
                "summary": "List learning experiences",
                "parameters": [
                    {"name": "unit", "in": "query", "type": "integer"},
                    {"name": "subject", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["LearningExperiences"],
                "summary": "Create learning experience",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateLearningExperienceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/learning-experiences/{id}": {
            "get": {
                "tags": ["LearningExperiences"],
                "summary": "Get learning experience",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["LearningExperiences"],
                "summary": "Update learning experience",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateLearningExperienceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["LearningExperiences"],
                "summary": "Deactivate learning experience",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/learning-experiences/{id}/criteria": {
            "get": {
                "tags": ["LearningExperiences"],
                "summary": "Get success criteria",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lessons": {
            "get": {
                "tags": ["Lessons"],
                "summary": "List current teacher's lessons",
                "parameters": [
                    {"name": "learning_experience_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Lessons"],
                "summary": "Schedule a lesson",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateLessonRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lessons/week/{week}": {
            "get": {
                "tags": ["Lessons"],
                "summary": "Weekly plan of published lessons",
                "parameters": [
                    {"name": "week", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/lessons/{id}/status": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Change lesson status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"type": "object", "properties": {"status": {"type": "string"}}}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Invalid transition"}
                }
            }
        },
        "/lessons/{id}/worksheets": {
            "get": {
                "tags": ["Worksheets"],
                "summary": "List a lesson's worksheets",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "tier", "in": "query", "type": "string", "enum": ["mild", "medium", "spicy", "enrichment"]}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Worksheets"],
                "summary": "Generate tiered worksheets",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/worksheets/{id}/download-url": {
            "get": {
                "tags": ["Worksheets"],
                "summary": "Issue a worksheet download token",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "PDF not rendered yet"}
                }
            }
        },
        "/worksheets/download": {
            "get": {
                "tags": ["Worksheets"],
                "summary": "Download a worksheet PDF by signed token",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF stream"},
                    "401": {"description": "Invalid or expired token"}
                }
            }
        },
        "/evidence": {
            "get": {
                "tags": ["Evidence"],
                "summary": "List evidence logged by the current teacher",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Evidence"],
                "summary": "Log evidence",
                "description": "Records an observation and synchronously recomputes the affected progress record",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LogEvidenceRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid mastery level or payload"}
                }
            }
        },
        "/evidence/{id}": {
            "get": {
                "tags": ["Evidence"],
                "summary": "Get evidence",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Evidence"],
                "summary": "Update evidence",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateEvidenceRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Evidence"],
                "summary": "Delete evidence",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/progress/students/{studentId}": {
            "get": {
                "tags": ["Progress"],
                "summary": "List a student's progress records",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/progress/students/{studentId}/experiences/{leId}": {
            "get": {
                "tags": ["Progress"],
                "summary": "Get progress for one student and learning experience",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "leId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "No progress recorded"}
                }
            }
        },
        "/progress/students/{studentId}/experiences/{leId}/recompute": {
            "post": {
                "tags": ["Progress"],
                "summary": "Force a progress recompute",
                "parameters": [
                    {"name": "studentId", "in": "path", "required": true, "type": "string"},
                    {"name": "leId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/progress/experiences/{leId}": {
            "get": {
                "tags": ["Progress"],
                "summary": "List class progress for a learning experience",
                "parameters": [
                    {"name": "leId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/progress/experiences/{leId}/export": {
            "get": {
                "tags": ["Progress"],
                "summary": "Export class progress as CSV or PDF",
                "parameters": [
                    {"name": "leId", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File stream"}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "CreateStudentRequest": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "year_level": {"type": "integer"}
            },
            "required": ["first_name", "last_name", "year_level"]
        },
        "UpdateStudentRequest": {
            "type": "object",
            "properties": {
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "year_level": {"type": "integer"},
                "active": {"type": "boolean"}
            }
        },
        "CreateLearningExperienceRequest": {
            "type": "object",
            "properties": {
                "unit_number": {"type": "integer"},
                "experience_number": {"type": "integer"},
                "core_concept": {"type": "string"},
                "learning_intention": {"type": "string"},
                "success_criteria": {"type": "array", "items": {"type": "string"}},
                "subject": {"type": "string"},
                "year_level": {"type": "integer"},
                "nesa_outcome_code": {"type": "string"},
                "duration_minutes": {"type": "integer"}
            },
            "required": ["unit_number", "experience_number", "core_concept", "learning_intention", "success_criteria", "subject", "year_level"]
        },
        "UpdateLearningExperienceRequest": {
            "type": "object",
            "properties": {
                "unit_number": {"type": "integer"},
                "experience_number": {"type": "integer"},
                "core_concept": {"type": "string"},
                "learning_intention": {"type": "string"},
                "success_criteria": {"type": "array", "items": {"type": "string"}},
                "subject": {"type": "string"},
                "year_level": {"type": "integer"},
                "nesa_outcome_code": {"type": "string"},
                "duration_minutes": {"type": "integer"}
            }
        },
        "CreateLessonRequest": {
            "type": "object",
            "properties": {
                "learning_experience_id": {"type": "string"},
                "week_number": {"type": "integer"},
                "date_scheduled": {"type": "string", "format": "date-time"},
                "duration_minutes": {"type": "integer"},
                "location": {"type": "string"},
                "notes": {"type": "string"}
            },
            "required": ["learning_experience_id", "week_number", "date_scheduled"]
        },
        "LogEvidenceRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "learning_experience_id": {"type": "string"},
                "lesson_id": {"type": "string"},
                "observation_text": {"type": "string"},
                "mastery_level": {"type": "integer", "minimum": 1, "maximum": 4},
                "success_criteria_ids": {"type": "array", "items": {"type": "string"}},
                "attachment_url": {"type": "string"},
                "notes": {"type": "string"}
            },
            "required": ["student_id", "learning_experience_id", "observation_text", "mastery_level"]
        },
        "UpdateEvidenceRequest": {
            "type": "object",
            "properties": {
                "student_id": {"type": "string"},
                "learning_experience_id": {"type": "string"},
                "lesson_id": {"type": "string"},
                "observation_date": {"type": "string", "format": "date-time"},
                "observation_text": {"type": "string"},
                "mastery_level": {"type": "integer", "minimum": 1, "maximum": 4},
                "success_criteria_ids": {"type": "array", "items": {"type": "string"}},
                "attachment_url": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "StudentProgress": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "student_id": {"type": "string"},
                "learning_experience_id": {"type": "string"},
                "mastery_level": {"type": "integer"},
                "success_criteria_status": {"type": "object"},
                "evidence_count": {"type": "integer"},
                "trend": {"type": "string", "enum": ["improving", "stable", "declining"]},
                "last_evidence_date": {"type": "string", "format": "date-time"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}

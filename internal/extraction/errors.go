package extraction

import "errors"

// Skip tells the pipeline this strategy found nothing usable on this page
// and the next strategy in the cascade should run.
var Skip = errors.New("extraction: strategy produced no candidates")

// Stop tells the pipeline the page is definitively not a listing page
// (validator rejection) and no further strategy should be attempted.
var Stop = errors.New("extraction: page rejected by validator")

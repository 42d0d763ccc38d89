package content

import "errors"

// errUndatedPost marks a post file carrying neither a front-matter date nor a
// date-prefixed filename. Such posts are skipped and reported.
var errUndatedPost = errors.New("post has no date in front-matter or filename")
